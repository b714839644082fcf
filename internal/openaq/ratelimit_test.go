package openaq

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	base := time.Now()
	r := NewRateLimiter(2)
	r.windowStart = base
	r.now = func() time.Time { return base }

	for i := 0; i < 2; i++ {
		if err := r.Acquire(context.Background()); err != nil {
			t.Fatalf("unexpected error on acquire %d: %v", i, err)
		}
	}
	if got := r.Remaining(); got != 0 {
		t.Errorf("expected 0 remaining, got %d", got)
	}
}

func TestRateLimiterResetsOnWindowRollover(t *testing.T) {
	base := time.Now()
	now := base
	r := NewRateLimiter(1)
	r.windowStart = base
	r.now = func() time.Time { return now }

	if err := r.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Remaining(); got != 0 {
		t.Fatalf("expected exhausted window, got %d remaining", got)
	}

	now = base.Add(61 * time.Second)
	if got := r.Remaining(); got != 1 {
		t.Errorf("expected full budget after rollover, got %d", got)
	}
	if err := r.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after rollover should not block: %v", err)
	}
}

func TestRateLimiterExhaustedRespectsCancellation(t *testing.T) {
	base := time.Now()
	r := NewRateLimiter(1)
	r.windowStart = base
	r.now = func() time.Time { return base }

	if err := r.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Acquire(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSleepContextZeroDuration(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
