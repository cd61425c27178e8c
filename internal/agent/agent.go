// Package agent contains the responder implementations that stand behind the
// chat turn: the deterministic mock used for demos and tests, the live agent
// runtime transport, and the payment flow that decorates both.
package agent

import (
	"context"
	"time"
)

// Request is one user turn as the responder sees it. InputText may be plain
// chat text or a submission envelope.
type Request struct {
	InputText string `json:"inputText"`
	SessionID string `json:"sessionId"`
}

// Response is the agent's turn. Completion carries the JSON-encoded content
// block sequence.
type Response struct {
	Completion       string `json:"completion"`
	SessionID        string `json:"sessionId"`
	RequestID        string `json:"requestId"`
	PromptTokens     int    `json:"promptTokens,omitempty"`
	CompletionTokens int    `json:"completionTokens,omitempty"`
}

// API is the backend boundary: one user input in, one agent reply out.
type API interface {
	SendMessage(ctx context.Context, req Request) (Response, error)
}

// Delay models the simulated (or real) backend latency as an injectable
// suspension point, so tests run synchronously.
type Delay func(ctx context.Context) error

// FixedDelay suspends for d, honoring context cancellation.
func FixedDelay(d time.Duration) Delay {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// NoDelay returns immediately; the test-time Delay.
func NoDelay() Delay {
	return func(ctx context.Context) error { return ctx.Err() }
}
