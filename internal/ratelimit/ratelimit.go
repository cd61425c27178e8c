// Package ratelimit provides a sliding-window request limiter checked before
// every turn.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

const window = time.Minute

// Status is a point-in-time view of the limiter, suitable for a "retry
// after" affordance in the UI.
type Status struct {
	Enabled           bool `json:"enabled"`
	RequestsRemaining int  `json:"requestsRemaining"`
	RequestsLimit     int  `json:"requestsLimit"`
	ResetInSeconds    int  `json:"resetInSeconds"`
}

// Limiter allows at most maxPerMinute requests within any rolling minute.
type Limiter struct {
	mu         sync.Mutex
	timestamps []time.Time
	limit      int
	enabled    bool
	now        func() time.Time
}

func New(maxPerMinute int, enabled bool) *Limiter {
	return &Limiter{
		limit:   maxPerMinute,
		enabled: enabled,
		now:     time.Now,
	}
}

// Check reports whether another request is allowed right now, and consumes
// a slot when it is. A disabled limiter always allows.
func (l *Limiter) Check() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return true
	}
	l.cleanupLocked()
	if len(l.timestamps) >= l.limit {
		return false
	}
	l.timestamps = append(l.timestamps, l.now())
	return true
}

// Status never consumes a slot.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked()
	remaining := l.limit - len(l.timestamps)
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Enabled:           l.enabled,
		RequestsRemaining: remaining,
		RequestsLimit:     l.limit,
		ResetInSeconds:    l.resetInSecondsLocked(),
	}
}

func (l *Limiter) cleanupLocked() {
	cutoff := l.now().Add(-window)
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept
}

func (l *Limiter) resetInSecondsLocked() int {
	if len(l.timestamps) == 0 {
		return 0
	}
	oldest := l.timestamps[0]
	for _, ts := range l.timestamps[1:] {
		if ts.Before(oldest) {
			oldest = ts
		}
	}
	remaining := oldest.Add(window).Sub(l.now())
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}
