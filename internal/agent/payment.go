package agent

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"agentchat-backend/internal/content"
	"agentchat-backend/internal/submit"
)

var paymentKeywords = []string{"payment", "subscribe", "upgrade", "billing", "checkout", "buy"}

// PaymentFlow decorates any backend with the billing demo behaviors: free
// text with payment intent gets a payment request appended to whatever reply
// the inner backend produced, and processPayment submissions are resolved
// with a simulated 80%-success payment rail.
type PaymentFlow struct {
	inner API
	now   func() time.Time
	// coin reports whether a simulated payment succeeds
	coin  func() bool
	txnID func() string
}

func WithPaymentFlow(inner API) *PaymentFlow {
	return &PaymentFlow{
		inner: inner,
		now:   time.Now,
		coin:  func() bool { return rand.Float64() > 0.2 },
		txnID: randomTxnID,
	}
}

func (p *PaymentFlow) SendMessage(ctx context.Context, req Request) (Response, error) {
	resp, err := p.inner.SendMessage(ctx, req)
	if err != nil {
		return resp, err
	}

	if env, isSubmission, derr := submit.TryDecode(req.InputText); isSubmission {
		if derr == nil && env.Action == "processPayment" {
			return p.processPayment(req, resp), nil
		}
		// Other submissions (and malformed ones) pass through untouched.
		return resp, nil
	}

	if containsAny(strings.ToLower(req.InputText), paymentKeywords...) {
		blocks := content.DecodeCompletion(resp.Completion)
		blocks = append(blocks, paymentRequestBlock())
		if completion, encErr := content.EncodeBlocks(blocks); encErr == nil {
			resp.Completion = completion
		}
	}
	return resp, nil
}

// processPayment replaces the inner reply entirely. The reply keeps the
// request's session id: minting a fresh one here would silently fork the
// conversation into an orphan session.
func (p *PaymentFlow) processPayment(req Request, base Response) Response {
	var form struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if env, _, err := submit.TryDecode(req.InputText); err == nil && env != nil {
		_ = env.DecodeFormData(&form)
	}
	if form.Amount == 0 {
		form.Amount = 99.99
	}
	if form.Currency == "" {
		form.Currency = "USD"
	}

	confirmation := content.PaymentConfirmation{
		TransactionID: p.txnID(),
		Amount:        form.Amount,
		Currency:      form.Currency,
		Timestamp:     p.now().UTC().Format(time.RFC3339),
	}

	var blocks []content.Block
	if p.coin() {
		confirmation.Title = "Payment Confirmation"
		confirmation.Status = "success"
		confirmation.ReceiptURL = "https://example.com/receipt"
		blocks = []content.Block{
			content.Text{Text: "Your payment has been processed successfully!"},
			confirmation,
		}
	} else {
		confirmation.Title = "Payment Failed"
		confirmation.Status = "failed"
		blocks = []content.Block{
			content.Text{Text: "There was an issue processing your payment."},
			confirmation,
		}
	}

	completion, err := content.EncodeBlocks(blocks)
	if err != nil {
		return base
	}
	return Response{
		Completion:       completion,
		SessionID:        req.SessionID,
		RequestID:        base.RequestID,
		PromptTokens:     len(strings.Fields(req.InputText)),
		CompletionTokens: 150,
	}
}

func paymentRequestBlock() content.Payment {
	return content.Payment{
		Title:       "Complete Your Purchase",
		Description: "Please select your preferred payment method and enter your details.",
		TotalAmount: 99.99,
		Currency:    "USD",
		Items: []content.PaymentItem{
			{
				ID:          "item-1",
				Name:        "AWS Bedrock Premium Plan",
				Description: "Monthly subscription for AWS Bedrock premium features",
				Price:       79.99,
				Currency:    "USD",
				Quantity:    1,
			},
			{
				ID:          "item-2",
				Name:        "Additional Tokens",
				Description: "1,000,000 extra tokens",
				Price:       20.00,
				Currency:    "USD",
				Quantity:    1,
			},
		},
		PaymentMethods: []content.PaymentMethod{
			{Type: "card", Label: "Credit/Debit Card", Description: "Pay with Visa, Mastercard, or American Express"},
			{Type: "bank", Label: "Bank Account", Description: "Direct deposit from your bank account"},
			{Type: "wallet", Label: "Digital Wallet", Description: "Pay with PayPal, Apple Pay, or Google Pay"},
		},
		SubmitButton: &content.Button{Text: "Complete Payment", OnSubmit: "processPayment"},
	}
}

const txnAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomTxnID yields opaque ids of the form txn_[0-9a-z]{9}.
func randomTxnID() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = txnAlphabet[rand.Intn(len(txnAlphabet))]
	}
	return "txn_" + string(b)
}
