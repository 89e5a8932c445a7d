// Package ratelimit implements a fixed-window rate limiter keyed by
// (subject, action). Windows are ephemeral in-memory records: this limiter
// is advisory and local to the single scheduler instance, it carries no
// cross-process guarantee.
package ratelimit

import (
	"sync"
	"time"

	"keypool/internal/pkg/clock"
)

type window struct {
	resetAt time.Time
	count   int
}

type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	clock   clock.Clock
}

func New(clk clock.Clock) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		clock:   clk,
	}
}

func key(subject, action string) string {
	return subject + ":" + action
}

// Check records one attempt for (subject, action) and reports whether it is
// within maxAttempts for the current window. A window is created on first
// use; an elapsed window resets the count and is extended from now.
func (l *Limiter) Check(subject, action string, maxAttempts int, windowLen time.Duration) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(subject, action)
	w, ok := l.windows[k]
	if !ok {
		w = &window{resetAt: now.Add(windowLen)}
		l.windows[k] = w
	} else if !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(windowLen)
	}

	w.count++
	return w.count <= maxAttempts
}

// RemainingCooldown returns the whole seconds until the current window for
// (subject, action) resets, or 0 if no window exists or it already elapsed.
func (l *Limiter) RemainingCooldown(subject, action string) int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key(subject, action)]
	if !ok || !now.Before(w.resetAt) {
		return 0
	}
	return int(w.resetAt.Sub(now).Seconds())
}

// Sweep drops windows whose reset time has passed, bounding memory. Returns
// the number of windows removed.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
