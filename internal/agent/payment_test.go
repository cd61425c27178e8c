package agent

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"agentchat-backend/internal/content"
	"agentchat-backend/internal/submit"
)

func newTestPaymentFlow() *PaymentFlow {
	p := WithPaymentFlow(newTestMock(nil))
	p.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	p.coin = func() bool { return true }
	p.txnID = func() string { return "txn_abc123def" }
	return p
}

func TestPaymentKeywordAppendsRequest(t *testing.T) {
	p := newTestPaymentFlow()
	blocks, _ := send(t, p, "I want to upgrade my plan")

	last, ok := blocks[len(blocks)-1].(content.Payment)
	if !ok {
		t.Fatalf("expected a trailing Payment block, got %T", blocks[len(blocks)-1])
	}
	if last.TotalAmount != 99.99 || last.Currency != "USD" {
		t.Errorf("unexpected payment request totals: %+v", last)
	}
	if len(last.Items) != 2 || len(last.PaymentMethods) != 3 {
		t.Errorf("unexpected payment request shape: %d items, %d methods", len(last.Items), len(last.PaymentMethods))
	}
	if last.SubmitButton == nil || last.SubmitButton.OnSubmit != "processPayment" {
		t.Errorf("payment request must submit processPayment: %+v", last.SubmitButton)
	}
	// The inner reply is kept, the payment request is appended after it.
	if len(blocks) < 2 {
		t.Error("inner backend reply should precede the payment request")
	}
}

func TestNoPaymentRequestWithoutKeyword(t *testing.T) {
	p := newTestPaymentFlow()
	blocks, _ := send(t, p, "tell me about security")
	for _, b := range blocks {
		if _, ok := b.(content.Payment); ok {
			t.Fatal("payment request must only appear for payment intent")
		}
	}
}

func TestOtherSubmissionsPassThrough(t *testing.T) {
	p := newTestPaymentFlow()
	input, _ := submit.Encode("serviceSelected", content.Option{Label: "AWS Bedrock", Value: "bedrock"})
	blocks, _ := send(t, p, input)

	// serviceSelected mentions "selected", never payment content.
	if _, ok := blocks[len(blocks)-1].(content.Steps); !ok {
		t.Errorf("non-payment submissions must reach the inner backend untouched, got %T", blocks[len(blocks)-1])
	}
}

func TestProcessPaymentSuccess(t *testing.T) {
	p := newTestPaymentFlow()
	input, _ := submit.Encode("processPayment", map[string]any{"amount": 49.99, "currency": "EUR"})

	resp, err := p.SendMessage(context.Background(), Request{InputText: input, SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("payment reply must keep the request's session id, got %q", resp.SessionID)
	}
	if resp.CompletionTokens != 150 {
		t.Errorf("expected fixed completion tokens, got %d", resp.CompletionTokens)
	}

	blocks, _ := content.DecodeBlocks([]byte(resp.Completion))
	if len(blocks) != 2 {
		t.Fatalf("expected text plus confirmation, got %d blocks", len(blocks))
	}
	conf, ok := blocks[1].(content.PaymentConfirmation)
	if !ok {
		t.Fatalf("expected PaymentConfirmation, got %T", blocks[1])
	}
	if conf.Status != "success" {
		t.Errorf("expected success status, got %q", conf.Status)
	}
	if conf.Amount != 49.99 || conf.Currency != "EUR" {
		t.Errorf("submitted amount lost: %+v", conf)
	}
	if conf.TransactionID != "txn_abc123def" {
		t.Errorf("unexpected transaction id %q", conf.TransactionID)
	}
	if conf.ReceiptURL == "" {
		t.Error("successful payment must carry a receipt URL")
	}
	if conf.Timestamp != "2025-03-01T12:00:00Z" {
		t.Errorf("confirmation timestamp should come from the clock, got %q", conf.Timestamp)
	}
}

func TestProcessPaymentFailure(t *testing.T) {
	p := newTestPaymentFlow()
	p.coin = func() bool { return false }
	input, _ := submit.Encode("processPayment", nil)
	blocks, _ := send(t, p, input)

	conf := blocks[1].(content.PaymentConfirmation)
	if conf.Status != "failed" {
		t.Errorf("expected failed status, got %q", conf.Status)
	}
	if conf.ReceiptURL != "" {
		t.Errorf("failed payment must not carry a receipt URL, got %q", conf.ReceiptURL)
	}
	if text := blocks[0].(content.Text).Text; !strings.Contains(text, "issue processing") {
		t.Errorf("unexpected failure text %q", text)
	}
}

func TestProcessPaymentDefaults(t *testing.T) {
	p := newTestPaymentFlow()
	input, _ := submit.Encode("processPayment", nil)
	blocks, _ := send(t, p, input)

	conf := blocks[1].(content.PaymentConfirmation)
	if conf.Amount != 99.99 || conf.Currency != "USD" {
		t.Errorf("missing form data should fall back to defaults, got %+v", conf)
	}
}

func TestPaymentOutcomesVary(t *testing.T) {
	p := WithPaymentFlow(newTestMock(nil))
	p.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	r := rand.New(rand.NewSource(42))
	p.coin = func() bool { return r.Float64() > 0.2 }

	input, _ := submit.Encode("processPayment", nil)
	txnPattern := regexp.MustCompile(`^txn_[0-9a-z]{9}$`)
	seen := map[string]bool{}
	ids := map[string]bool{}
	for i := 0; i < 200; i++ {
		blocks, _ := send(t, p, input)
		conf := blocks[1].(content.PaymentConfirmation)
		seen[conf.Status] = true
		if !txnPattern.MatchString(conf.TransactionID) {
			t.Fatalf("malformed transaction id %q", conf.TransactionID)
		}
		if ids[conf.TransactionID] {
			t.Fatalf("transaction id %q repeated", conf.TransactionID)
		}
		ids[conf.TransactionID] = true
	}
	if !seen["success"] || !seen["failed"] {
		t.Errorf("both outcomes should occur over many attempts, saw %v", seen)
	}
}
