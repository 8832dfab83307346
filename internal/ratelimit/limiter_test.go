package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAdmitUnderLimitDoesNotBlock(t *testing.T) {
	l := newWithWindow(3, 100*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Admit(context.Background()); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("admissions under the ceiling took %v, want no wait", elapsed)
	}
	if got := l.InWindow(); got != 3 {
		t.Errorf("in-window count = %d, want 3", got)
	}
}

func TestAdmitBeyondLimitWaitsForWindow(t *testing.T) {
	window := 80 * time.Millisecond
	l := newWithWindow(3, window)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Admit(context.Background()); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}

	// The 4th and 5th admissions both block until earlier stamps leave
	// the window; neither may finish before a full window has passed.
	var wg sync.WaitGroup
	done := make([]time.Time, 2)
	for i := range done {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Admit(context.Background()); err != nil {
				t.Errorf("blocked admit %d: %v", i, err)
				return
			}
			done[i] = time.Now()
		}(i)
	}
	wg.Wait()

	for i, at := range done {
		if waited := at.Sub(start); waited < window {
			t.Errorf("blocked admit %d finished after %v, want at least the %v window", i, waited, window)
		}
	}
}

func TestAdmitHonorsContextCancellation(t *testing.T) {
	l := newWithWindow(1, time.Hour)
	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("first admit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := l.Admit(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("admit with expiring context returned %v, want context.DeadlineExceeded", err)
	}
}

func TestExpiredStampsAreTrimmed(t *testing.T) {
	now := time.Unix(1000, 0)
	l := newWithWindow(2, time.Minute)
	l.now = func() time.Time { return now }

	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if got := l.InWindow(); got != 2 {
		t.Fatalf("in-window count = %d, want 2", got)
	}

	now = now.Add(61 * time.Second)
	if got := l.InWindow(); got != 0 {
		t.Errorf("in-window count after window elapsed = %d, want 0", got)
	}
}

func TestNewClampsNonPositiveLimit(t *testing.T) {
	l := New(0)
	if err := l.Admit(context.Background()); err != nil {
		t.Fatalf("admit with clamped limit: %v", err)
	}
}
