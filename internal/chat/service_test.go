package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agentchat-backend/internal/agent"
	"agentchat-backend/internal/content"
	"agentchat-backend/internal/ratelimit"
	"agentchat-backend/internal/session"
)

// stubAPI lets tests script the backend per call.
type stubAPI struct {
	fn func(ctx context.Context, req agent.Request) (agent.Response, error)
}

func (s *stubAPI) SendMessage(ctx context.Context, req agent.Request) (agent.Response, error) {
	return s.fn(ctx, req)
}

func echoAPI() *stubAPI {
	return &stubAPI{fn: func(_ context.Context, req agent.Request) (agent.Response, error) {
		completion, _ := content.EncodeBlocks([]content.Block{content.Text{Text: "echo: " + req.InputText}})
		return agent.Response{Completion: completion, SessionID: req.SessionID}, nil
	}}
}

func newTestService(t *testing.T, api agent.API) (*Service, string) {
	t.Helper()
	store, err := session.NewStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, api, nil, nil)
	sess, err := svc.StartSession()
	if err != nil {
		t.Fatal(err)
	}
	return svc, sess.ID
}

func TestSendMessageAppendsUserAndAgent(t *testing.T) {
	svc, id := newTestService(t, echoAPI())

	sess, err := svc.SendMessage(context.Background(), id, "hello agent")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected user+agent messages, got %d", len(sess.Messages))
	}
	if sess.Messages[0].Role != session.RoleUser || sess.Messages[1].Role != session.RoleAgent {
		t.Errorf("unexpected roles: %s, %s", sess.Messages[0].Role, sess.Messages[1].Role)
	}
	userText := sess.Messages[0].Content[0].(content.Text).Text
	if userText != "hello agent" {
		t.Errorf("user message must carry the input verbatim, got %q", userText)
	}
	agentText := sess.Messages[1].Content[0].(content.Text).Text
	if agentText != "echo: hello agent" {
		t.Errorf("agent message must carry the decoded completion, got %q", agentText)
	}
	if sess.Title != "hello agent" {
		t.Errorf("first user message should title the session, got %q", sess.Title)
	}
}

func TestValidation(t *testing.T) {
	svc, id := newTestService(t, echoAPI())

	tests := []struct {
		name      string
		sessionID string
		input     string
		wantErr   error
	}{
		{"empty input", id, "", ErrEmptyInput},
		{"whitespace input", id, "   \n\t ", ErrEmptyInput},
		{"too long", id, strings.Repeat("a", 4001), ErrInputTooLong},
		{"not a uuid", "not-a-uuid", "hello", ErrInvalidSessionID},
		{"uuid wrong version", "00000000-0000-1000-8000-000000000000", "hello", ErrInvalidSessionID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(context.Background(), tt.sessionID, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// Validation failures must not touch the session.
	sess, _ := svc.GetSession(id)
	if len(sess.Messages) != 0 {
		t.Errorf("rejected input must not be appended, got %d messages", len(sess.Messages))
	}
}

func TestMaxLengthInputAccepted(t *testing.T) {
	svc, id := newTestService(t, echoAPI())
	if _, err := svc.SendMessage(context.Background(), id, strings.Repeat("a", 4000)); err != nil {
		t.Errorf("input at the limit must be accepted: %v", err)
	}
}

func TestUnknownSessionRejected(t *testing.T) {
	svc, _ := newTestService(t, echoAPI())
	// Valid v4 shape, but never created.
	_, err := svc.SendMessage(context.Background(), "9b2d44a0-15c3-4f6e-8a7b-2f1c9d3e5a10", "hello")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBackendFailureKeepsTimeline(t *testing.T) {
	failing := &stubAPI{fn: func(context.Context, agent.Request) (agent.Response, error) {
		return agent.Response{}, errors.New("connection refused")
	}}
	svc, id := newTestService(t, failing)

	sess, err := svc.SendMessage(context.Background(), id, "hello")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if sess == nil || len(sess.Messages) != 2 {
		t.Fatalf("failed turn must still record user message and failure reply, got %+v", sess)
	}
	reply := sess.Messages[1].Content[0].(content.Text).Text
	if !strings.Contains(reply, "couldn't reach the agent") {
		t.Errorf("unexpected failure reply %q", reply)
	}

	// The next turn is allowed: the in-flight slot was released.
	svc.api = echoAPI()
	if _, err := svc.SendMessage(context.Background(), id, "retry"); err != nil {
		t.Errorf("session must remain usable after a failed turn: %v", err)
	}
}

func TestRateLimitRejection(t *testing.T) {
	store, _ := session.NewStore(nil)
	svc := NewService(store, echoAPI(), ratelimit.New(1, true), nil)
	sess, _ := svc.StartSession()

	if _, err := svc.SendMessage(context.Background(), sess.ID, "first"); err != nil {
		t.Fatalf("first turn should pass: %v", err)
	}
	_, err := svc.SendMessage(context.Background(), sess.ID, "second")
	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rle.ResetInSeconds <= 0 || rle.ResetInSeconds > 60 {
		t.Errorf("reset hint out of range: %d", rle.ResetInSeconds)
	}

	got, _ := svc.GetSession(sess.ID)
	if len(got.Messages) != 2 {
		t.Errorf("rate-limited input must not be appended, got %d messages", len(got.Messages))
	}
}

func TestSecondTurnWhileFirstInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := &stubAPI{fn: func(_ context.Context, req agent.Request) (agent.Response, error) {
		close(entered)
		<-release
		completion, _ := content.EncodeBlocks([]content.Block{content.Text{Text: "done"}})
		return agent.Response{Completion: completion, SessionID: req.SessionID}, nil
	}}
	svc, id := newTestService(t, blocking)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(context.Background(), id, "slow one")
		firstDone <- err
	}()

	<-entered
	if _, err := svc.SendMessage(context.Background(), id, "impatient"); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("expected ErrTurnInFlight, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first turn should complete: %v", err)
	}

	// The slot is freed once the turn completes.
	svc.api = echoAPI()
	if _, err := svc.SendMessage(context.Background(), id, "after"); err != nil {
		t.Errorf("turn after completion should pass: %v", err)
	}

	sess, _ := svc.GetSession(id)
	if len(sess.Messages) != 4 {
		t.Errorf("rejected turn must leave no trace, expected 4 messages, got %d", len(sess.Messages))
	}
}

func TestConcurrentTurnsOnDifferentSessions(t *testing.T) {
	var slowSession string
	entered := make(chan struct{})
	release := make(chan struct{})
	perSession := &stubAPI{fn: func(_ context.Context, req agent.Request) (agent.Response, error) {
		if req.SessionID == slowSession {
			close(entered)
			<-release
		}
		completion, _ := content.EncodeBlocks([]content.Block{content.Text{Text: "done"}})
		return agent.Response{Completion: completion, SessionID: req.SessionID}, nil
	}}
	svc, first := newTestService(t, perSession)
	slowSession = first
	other, _ := svc.StartSession()

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.SendMessage(context.Background(), first, "slow one")
		firstDone <- err
	}()
	<-entered

	// The in-flight guard is per session, not global: the other session's
	// turn completes while the first one is still blocked.
	if _, err := svc.SendMessage(context.Background(), other.ID, "independent"); err != nil {
		t.Errorf("different session must not be blocked: %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first turn should complete: %v", err)
	}
}
