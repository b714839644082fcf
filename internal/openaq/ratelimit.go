package openaq

import (
	"context"
	"sync"
	"time"
)

// RateLimiter caps outgoing request volume against a fixed 60-second window.
// The window is created when the client is constructed, lives for the process
// lifetime, and is silently reset on rollover. It is safe for concurrent use;
// the lock is released while a caller sleeps out the remainder of an
// exhausted window so other callers are not serialized behind the sleeper.
type RateLimiter struct {
	mu          sync.Mutex
	budget      int
	window      time.Duration
	windowStart time.Time
	count       int

	now func() time.Time
}

// NewRateLimiter creates a limiter allowing budget requests per minute.
// A budget <= 0 falls back to 60 requests per minute.
func NewRateLimiter(budget int) *RateLimiter {
	if budget <= 0 {
		budget = 60
	}
	return &RateLimiter{
		budget:      budget,
		window:      time.Minute,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Acquire blocks until a request slot is available in the current window or
// the context is cancelled. It cannot fail otherwise, only delay.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		if now.Sub(r.windowStart) >= r.window {
			r.windowStart = now
			r.count = 0
		}
		if r.count < r.budget {
			r.count++
			r.mu.Unlock()
			return nil
		}
		wait := r.window - now.Sub(r.windowStart)
		r.mu.Unlock()

		if err := sleepContext(ctx, wait); err != nil {
			return err
		}
	}
}

// Remaining reports how many request slots are left in the current window.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.now().Sub(r.windowStart) >= r.window {
		return r.budget
	}
	left := r.budget - r.count
	if left < 0 {
		return 0
	}
	return left
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
