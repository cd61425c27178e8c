// Package notify is a fire-and-forget sink for user-facing events. The core
// reports to it and moves on; a sink must never block a turn.
package notify

import (
	"fmt"
	"log"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

type Notifier interface {
	Notify(kind Kind, message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(kind Kind, message string) {
	log.Printf("[notify] %s: %s", kind, message)
}

// Nop discards everything; useful in tests.
type Nop struct{}

func (Nop) Notify(Kind, string) {}

// RateLimitExceeded emits the standard warning with a reset hint.
func RateLimitExceeded(n Notifier, resetInSeconds int) {
	if n == nil {
		return
	}
	n.Notify(Warning, fmt.Sprintf("Rate limit exceeded. Please try again in %d seconds.", resetInSeconds))
}
