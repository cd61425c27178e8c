package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"agentchat-backend/internal/content"
	"agentchat-backend/internal/notify"
	"agentchat-backend/internal/submit"
)

type recordingNotifier struct {
	kinds    []notify.Kind
	messages []string
}

func (r *recordingNotifier) Notify(kind notify.Kind, message string) {
	r.kinds = append(r.kinds, kind)
	r.messages = append(r.messages, message)
}

func newTestMock(n notify.Notifier) *Mock {
	m := NewMock(n, NoDelay())
	m.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	m.newID = func() string { return "req-1" }
	m.intn = func(int) int { return 25 }
	return m
}

func send(t *testing.T, api API, input string) ([]content.Block, Response) {
	t.Helper()
	resp, err := api.SendMessage(context.Background(), Request{InputText: input, SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	blocks, err := content.DecodeBlocks([]byte(resp.Completion))
	if err != nil {
		t.Fatalf("completion is not a block array: %v\n%s", err, resp.Completion)
	}
	return blocks, resp
}

func TestSecurityKeywordReply(t *testing.T) {
	m := newTestMock(nil)
	blocks, _ := send(t, m, "tell me about security")

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	dash, ok := blocks[1].(content.SecurityDashboard)
	if !ok {
		t.Fatalf("expected SecurityDashboard, got %T", blocks[1])
	}
	if dash.SecurityScore != 85 {
		t.Errorf("expected score 85, got %d", dash.SecurityScore)
	}
	if len(dash.Actions) != 3 || dash.SubmitButton == nil || dash.SubmitButton.OnSubmit != "securityAction" {
		t.Errorf("dashboard lost its actions: %+v", dash)
	}
}

func TestSameInputSameReply(t *testing.T) {
	m := newTestMock(nil)
	_, first := send(t, m, "how secure is this?")
	_, second := send(t, m, "how secure is this?")
	if first.Completion != second.Completion {
		t.Error("identical free text must produce identical completions")
	}
}

func TestKeywordMatchingIsCaseInsensitive(t *testing.T) {
	m := newTestMock(nil)
	blocks, _ := send(t, m, "SECURITY please")
	if _, ok := blocks[1].(content.SecurityDashboard); !ok {
		t.Errorf("uppercase keyword should still match, got %T", blocks[1])
	}
}

func TestEarlierRuleWins(t *testing.T) {
	m := newTestMock(nil)
	// "secure file upload" matches both the security and the upload rules;
	// the table order makes security win.
	blocks, _ := send(t, m, "secure file upload")
	if _, ok := blocks[1].(content.SecurityDashboard); !ok {
		t.Errorf("expected the security rule to take precedence, got %T", blocks[1])
	}
}

func TestSingleSelectReply(t *testing.T) {
	m := newTestMock(nil)
	blocks, _ := send(t, m, "let me select one service")
	choices, ok := blocks[1].(content.Choices)
	if !ok {
		t.Fatalf("expected Choices, got %T", blocks[1])
	}
	if choices.SelectionType != "radio" || len(choices.Options) != 4 {
		t.Errorf("unexpected choices shape: %+v", choices)
	}
	if choices.SubmitButton.OnSubmit != "serviceSelected" {
		t.Errorf("expected serviceSelected submit action, got %q", choices.SubmitButton.OnSubmit)
	}
}

func TestHelpFallback(t *testing.T) {
	m := newTestMock(nil)
	blocks, _ := send(t, m, "hello")
	if len(blocks) != 1 {
		t.Fatalf("expected a single text block, got %d blocks", len(blocks))
	}
	text := blocks[0].(content.Text).Text
	if !strings.Contains(text, `"hello"`) {
		t.Errorf("help reply should echo the prompt, got %q", text)
	}
	if !strings.Contains(text, `"security"`) || !strings.Contains(text, `"progress"`) {
		t.Errorf("help reply should list the supported keywords, got %q", text)
	}
}

func TestServiceSelectedAction(t *testing.T) {
	m := newTestMock(nil)
	input, err := submit.Encode("serviceSelected", content.Option{Label: "AWS Bedrock", Value: "bedrock"})
	if err != nil {
		t.Fatal(err)
	}
	blocks, _ := send(t, m, input)

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	if text := blocks[0].(content.Text).Text; text != "You've selected AWS Bedrock (bedrock)." {
		t.Errorf("unexpected acknowledgement %q", text)
	}
	steps, ok := blocks[2].(content.Steps)
	if !ok {
		t.Fatalf("expected Steps, got %T", blocks[2])
	}
	if steps.Title != "Getting Started with AWS Bedrock" {
		t.Errorf("unexpected steps title %q", steps.Title)
	}
	if len(steps.Steps) != 4 || !strings.Contains(steps.Steps[2], "AWS Bedrock") {
		t.Errorf("steps should reference the selection: %+v", steps.Steps)
	}
}

func TestFeaturesEnabledAcceptsListOrSingle(t *testing.T) {
	m := newTestMock(nil)

	listInput, _ := submit.Encode("featuresEnabled", []content.Option{
		{Label: "Knowledge Base Integration", Value: "kb"},
		{Label: "API Integration", Value: "api"},
	})
	blocks, _ := send(t, m, listInput)
	if text := blocks[0].(content.Text).Text; !strings.Contains(text, "Knowledge Base Integration, API Integration") {
		t.Errorf("expected joined labels, got %q", text)
	}

	singleInput, _ := submit.Encode("featuresEnabled", content.Option{Label: "API Integration", Value: "api"})
	blocks, _ = send(t, m, singleInput)
	if text := blocks[0].(content.Text).Text; !strings.Contains(text, "API Integration") {
		t.Errorf("single option should still be understood, got %q", text)
	}
}

func TestSecurityActionReportTimestamp(t *testing.T) {
	m := newTestMock(nil)
	input, _ := submit.Encode("securityAction", content.Option{Label: "View Security Report", Value: "report"})
	blocks, _ := send(t, m, input)

	report, ok := blocks[1].(content.SecurityReport)
	if !ok {
		t.Fatalf("expected SecurityReport, got %T", blocks[1])
	}
	if report.Timestamp != "2025-03-01T12:00:00Z" {
		t.Errorf("report timestamp should come from the clock, got %q", report.Timestamp)
	}
	if len(report.Findings) != 3 {
		t.Errorf("expected 3 findings, got %d", len(report.Findings))
	}
}

func TestUnknownActionAcknowledged(t *testing.T) {
	m := newTestMock(nil)
	input, _ := submit.Encode("danceParty", nil)
	blocks, _ := send(t, m, input)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if text := blocks[0].(content.Text).Text; text != "Action 'danceParty' performed successfully." {
		t.Errorf("unexpected acknowledgement %q", text)
	}
}

func TestMalformedSubmissionReply(t *testing.T) {
	rec := &recordingNotifier{}
	m := newTestMock(rec)
	blocks, _ := send(t, m, submit.Prefix+`{"action": broken`)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if text := blocks[0].(content.Text).Text; !strings.Contains(text, "could not be processed") {
		t.Errorf("unexpected reply %q", text)
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != notify.Error {
		t.Errorf("expected an error notification, got %v", rec.kinds)
	}
}

func TestSubmissionNotifiesSuccess(t *testing.T) {
	rec := &recordingNotifier{}
	m := newTestMock(rec)
	input, _ := submit.Encode("serviceSelected", content.Option{Label: "AWS Bedrock", Value: "bedrock"})
	send(t, m, input)

	if len(rec.kinds) != 1 || rec.kinds[0] != notify.Success {
		t.Fatalf("expected a success notification, got %v", rec.kinds)
	}
	if rec.messages[0] != "Action performed: serviceSelected" {
		t.Errorf("unexpected notification %q", rec.messages[0])
	}
}

func TestResponseMetadata(t *testing.T) {
	m := newTestMock(nil)
	_, resp := send(t, m, "tell me about security")

	if resp.SessionID != "sess-1" {
		t.Errorf("session id must be echoed, got %q", resp.SessionID)
	}
	if resp.RequestID != "req-1" {
		t.Errorf("request id should come from the id source, got %q", resp.RequestID)
	}
	if resp.PromptTokens != 4 {
		t.Errorf("prompt tokens should count words, got %d", resp.PromptTokens)
	}
	if resp.CompletionTokens != 75 {
		t.Errorf("completion tokens should come from the stubbed source, got %d", resp.CompletionTokens)
	}
}

func TestDelayHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMock(nil, FixedDelay(time.Minute))
	if _, err := m.SendMessage(ctx, Request{InputText: "hi", SessionID: "s"}); err == nil {
		t.Error("cancelled context must abort the simulated latency")
	}
}
