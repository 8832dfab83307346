// Package ratelimit provides sliding-window admission control shared by
// all scan operations. It is a strict count-in-window design rather than
// a token bucket, so window resets are exact.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most limit operations per rolling window. The
// zero value is not usable; construct with New.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

// New returns a limiter admitting limit operations per rolling minute.
func New(limit int) *Limiter {
	return newWithWindow(limit, time.Minute)
}

func newWithWindow(limit int, window time.Duration) *Limiter {
	if limit < 1 {
		limit = 1
	}
	return &Limiter{limit: limit, window: window, now: time.Now}
}

// Admit blocks until the caller may proceed or ctx is done. The wait is
// computed from when the oldest retained timestamp exits the window, so
// admission is FIFO and never busy-polls. The admission timestamp is
// recorded on the admitting goroutine after any wait, immediately before
// returning, so a burst of concurrent admits cannot overcount.
func (l *Limiter) Admit(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.trim(now)

		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		wait := l.stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// InWindow returns how many admissions are currently retained in the
// rolling window.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trim(l.now())
	return len(l.stamps)
}

// trim drops timestamps that have left the window. Caller holds l.mu.
func (l *Limiter) trim(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = l.stamps[i:]
	}
}
