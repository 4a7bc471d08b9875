package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Common rate limiter errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Strategy selects what a saturated limiter does with excess calls.
type Strategy string

const (
	// StrategyQueue waits for the oldest admitted call to leave the window,
	// then re-checks admission.
	StrategyQueue Strategy = "queue"
	// StrategyDelay behaves like StrategyQueue; the distinction exists for
	// callers that want to express intent in configuration.
	StrategyDelay Strategy = "delay"
	// StrategyReject fails immediately with ErrRateLimited.
	StrategyReject Strategy = "reject"
)

// RateLimiterConfig configures a sliding-window rate limiter.
type RateLimiterConfig struct {
	// Name identifies this limiter for metrics/logging. Usually the guard key.
	Name string
	// MaxRequests is the number of calls admitted per rolling window.
	// Zero means nothing is ever admitted.
	MaxRequests int
	// Window is the rolling window duration. Defaults to 60s.
	Window time.Duration
	// Strategy is applied when the window is saturated. Defaults to StrategyQueue.
	Strategy Strategy
	// OnLimit is called when a call is delayed or rejected.
	OnLimit func(name string, wait time.Duration)
}

// SlidingWindowLimiter admits at most MaxRequests calls per rolling window.
// The timestamp sequence of admitted calls is purged of entries older than
// now-Window before every admission decision, and the check-then-append
// sequence is atomic under a per-limiter mutex.
type SlidingWindowLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	admitted []time.Time
}

// NewSlidingWindowLimiter creates a new limiter.
func NewSlidingWindowLimiter(config RateLimiterConfig) *SlidingWindowLimiter {
	if config.Window <= 0 {
		config.Window = 60 * time.Second
	}
	if config.Strategy == "" {
		config.Strategy = StrategyQueue
	}
	if config.MaxRequests < 0 {
		config.MaxRequests = 0
	}

	return &SlidingWindowLimiter{config: config}
}

// Allow checks admission without blocking, consuming a slot when one is free.
func (l *SlidingWindowLimiter) Allow() bool {
	_, ok := l.reserve()
	return ok
}

// Execute gates fn behind the limiter. Under StrategyReject a saturated
// window fails immediately with ErrRateLimited and fn never runs; otherwise
// the call waits for the oldest slot to expire and re-runs the full admission
// check, since another caller may take the freed slot first.
func (l *SlidingWindowLimiter) Execute(ctx context.Context, fn func() error) error {
	if l.config.MaxRequests == 0 {
		// Can never admit; queueing would wait forever.
		l.notifyLimit(0)
		return ErrRateLimited
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := l.reserve()
		if ok {
			return fn()
		}

		if l.config.Strategy == StrategyReject {
			l.notifyLimit(wait)
			return ErrRateLimited
		}

		l.notifyLimit(wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryAfter returns how long a caller would have to wait for the next free
// slot. Zero means a call would be admitted immediately.
func (l *SlidingWindowLimiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.purge(now)

	if len(l.admitted) < l.config.MaxRequests {
		return 0
	}
	return l.waitFor(now)
}

// InWindow returns the number of admitted calls currently inside the window.
func (l *SlidingWindowLimiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.purge(time.Now())
	return len(l.admitted)
}

// Reset clears all admitted timestamps, returning the limiter to its initial
// empty state.
func (l *SlidingWindowLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.admitted = nil
}

// MaxRequests returns the configured window capacity.
func (l *SlidingWindowLimiter) MaxRequests() int {
	return l.config.MaxRequests
}

// Window returns the configured window duration.
func (l *SlidingWindowLimiter) Window() time.Duration {
	return l.config.Window
}

// reserve purges expired timestamps and either consumes a slot or reports
// how long until the oldest admitted call leaves the window.
func (l *SlidingWindowLimiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.purge(now)

	if len(l.admitted) < l.config.MaxRequests {
		l.admitted = append(l.admitted, now)
		return 0, true
	}

	return l.waitFor(now), false
}

// purge drops timestamps older than now-Window. Timestamps are appended in
// ascending order, so a prefix scan suffices.
func (l *SlidingWindowLimiter) purge(now time.Time) {
	cutoff := now.Add(-l.config.Window)
	i := 0
	for i < len(l.admitted) && !l.admitted[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.admitted = append(l.admitted[:0], l.admitted[i:]...)
	}
}

// waitFor computes the wait until the oldest slot expires. Callers must hold
// the mutex and have purged first.
func (l *SlidingWindowLimiter) waitFor(now time.Time) time.Duration {
	if len(l.admitted) == 0 {
		return 0
	}
	wait := l.admitted[0].Add(l.config.Window).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (l *SlidingWindowLimiter) notifyLimit(wait time.Duration) {
	if l.config.OnLimit != nil {
		l.config.OnLimit(l.config.Name, wait)
	}
}
