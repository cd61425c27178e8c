package chat

import (
	"errors"
	"fmt"
)

// Validation errors are raised before any state mutation and reach the caller
// verbatim for display.
var (
	ErrInvalidSessionID = errors.New("invalid session ID format")
	ErrEmptyInput       = errors.New("input text cannot be empty")
	ErrInputTooLong     = errors.New("input text exceeds maximum length of 4000 characters")
	ErrTurnInFlight     = errors.New("a turn is already in progress for this session")
)

// RateLimitError is distinct from validation failures so the UI can offer a
// retry-after affordance.
type RateLimitError struct {
	ResetInSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %d seconds", e.ResetInSeconds)
}

// TransportError wraps a backend failure on an already-started turn. The user
// message stays in the session; the turn is half-complete.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("agent transport failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }
