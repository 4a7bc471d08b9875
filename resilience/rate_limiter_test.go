package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSlidingWindowLimiter_AdmitsUpToMaxInstantly(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 3,
		Window:      time.Second,
	})

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Errorf("call %d should be admitted", i)
		}
	}
	if l.Allow() {
		t.Error("call over the window capacity should not be admitted")
	}
	if l.InWindow() != 3 {
		t.Errorf("expected 3 calls in window, got %d", l.InWindow())
	}
}

func TestSlidingWindowLimiter_RejectStrategy(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 2,
		Window:      time.Second,
		Strategy:    StrategyReject,
	})

	executed := 0
	op := func() error {
		executed++
		return nil
	}

	for i := 0; i < 2; i++ {
		if err := l.Execute(context.Background(), op); err != nil {
			t.Errorf("call %d: expected no error, got %v", i, err)
		}
	}

	err := l.Execute(context.Background(), op)
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if executed != 2 {
		t.Errorf("rejected operation must never run; executed %d times", executed)
	}
}

func TestSlidingWindowLimiter_QueueStrategyWaitsForSlot(t *testing.T) {
	window := 50 * time.Millisecond
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 1,
		Window:      window,
		Strategy:    StrategyQueue,
	})

	if err := l.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("first call: %v", err)
	}

	start := time.Now()
	if err := l.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("queued call: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 25*time.Millisecond {
		t.Errorf("queued call should have waited about %v, waited %v", window, elapsed)
	}
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 1,
		Window:      30 * time.Millisecond,
	})

	if !l.Allow() {
		t.Fatal("first call should be admitted")
	}
	if l.Allow() {
		t.Fatal("second immediate call should not be admitted")
	}

	time.Sleep(40 * time.Millisecond)

	if !l.Allow() {
		t.Error("call after the window slid should be admitted")
	}
}

func TestSlidingWindowLimiter_ConcurrentAdmissionIsExact(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 5,
		Window:      time.Second,
		Strategy:    StrategyReject,
	})

	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Execute(context.Background(), func() error { return nil })
			if errors.Is(err, ErrRateLimited) {
				rejected.Add(1)
			} else if err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if admitted.Load() != 5 {
		t.Errorf("expected exactly 5 admissions, got %d", admitted.Load())
	}
	if rejected.Load() != 15 {
		t.Errorf("expected 15 rejections, got %d", rejected.Load())
	}
}

func TestSlidingWindowLimiter_ZeroCapacityAlwaysRejects(t *testing.T) {
	for _, strategy := range []Strategy{StrategyReject, StrategyQueue, StrategyDelay} {
		l := NewSlidingWindowLimiter(RateLimiterConfig{
			Name:        "test",
			MaxRequests: 0,
			Window:      time.Second,
			Strategy:    strategy,
		})

		err := l.Execute(context.Background(), func() error {
			t.Errorf("strategy %s: operation must not run", strategy)
			return nil
		})
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("strategy %s: expected ErrRateLimited, got %v", strategy, err)
		}
	}
}

func TestSlidingWindowLimiter_DefaultWindow(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{Name: "test", MaxRequests: 1})
	if l.Window() != 60*time.Second {
		t.Errorf("expected default 60s window, got %v", l.Window())
	}
}

func TestSlidingWindowLimiter_OnLimitCallback(t *testing.T) {
	var limitedName string
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "prices",
		MaxRequests: 1,
		Window:      time.Second,
		Strategy:    StrategyReject,
		OnLimit: func(name string, wait time.Duration) {
			limitedName = name
		},
	})

	_ = l.Execute(context.Background(), func() error { return nil })
	_ = l.Execute(context.Background(), func() error { return nil })

	if limitedName != "prices" {
		t.Errorf("expected OnLimit with name 'prices', got %q", limitedName)
	}
}

func TestSlidingWindowLimiter_RetryAfter(t *testing.T) {
	window := 100 * time.Millisecond
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 1,
		Window:      window,
	})

	if got := l.RetryAfter(); got != 0 {
		t.Errorf("empty window should report 0 wait, got %v", got)
	}

	l.Allow()
	got := l.RetryAfter()
	if got <= 0 || got > window {
		t.Errorf("expected wait in (0, %v], got %v", window, got)
	}
}

func TestSlidingWindowLimiter_CancelledWhileQueued(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 1,
		Window:      time.Second,
		Strategy:    StrategyQueue,
	})
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Execute(ctx, func() error {
		t.Error("operation must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestSlidingWindowLimiter_ResetIsIdempotent(t *testing.T) {
	l := NewSlidingWindowLimiter(RateLimiterConfig{
		Name:        "test",
		MaxRequests: 2,
		Window:      time.Minute,
	})

	l.Allow()
	l.Allow()
	if l.Allow() {
		t.Fatal("window should be saturated")
	}

	l.Reset()
	l.Reset()

	if l.InWindow() != 0 {
		t.Errorf("expected empty window after reset, got %d", l.InWindow())
	}
	if !l.Allow() {
		t.Error("call after reset should be admitted")
	}
}
