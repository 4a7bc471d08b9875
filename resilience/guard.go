package resilience

import (
	"context"
)

// Guard composes resilience patterns around a raw operation for one key.
// Absent patterns are no-ops. The chain order is fixed: circuit breaker
// outermost, then rate limiter, then bulkhead, then retry, then the
// operation. An open circuit therefore short-circuits before any rate-limit
// quota is consumed or any retry performed, and limiter waits never compound
// with backoff waits through shared timers.
type Guard struct {
	key      string
	breaker  *CircuitBreaker
	limiter  *SlidingWindowLimiter
	bulkhead *Bulkhead
	retry    *RetryConfig
}

type guardSpec struct {
	breaker  *CircuitBreakerConfig
	limiter  *RateLimiterConfig
	bulkhead *BulkheadConfig
	retry    *RetryConfig
}

// GuardOption configures a Guard.
type GuardOption func(*guardSpec)

// WithCircuitBreaker adds a circuit breaker to the guard.
func WithCircuitBreaker(config CircuitBreakerConfig) GuardOption {
	return func(s *guardSpec) {
		s.breaker = &config
	}
}

// WithRateLimit adds a sliding-window rate limiter to the guard.
func WithRateLimit(config RateLimiterConfig) GuardOption {
	return func(s *guardSpec) {
		s.limiter = &config
	}
}

// WithBulkhead adds a concurrency cap to the guard.
func WithBulkhead(config BulkheadConfig) GuardOption {
	return func(s *guardSpec) {
		s.bulkhead = &config
	}
}

// WithRetry adds backoff retries to the guard.
func WithRetry(config RetryConfig) GuardOption {
	return func(s *guardSpec) {
		s.retry = &config
	}
}

// NewGuard creates a standalone guard with private limiter/breaker state.
// Use Registry.Guard when state should be shared by key across call sites.
func NewGuard(key string, opts ...GuardOption) *Guard {
	var spec guardSpec
	for _, opt := range opts {
		opt(&spec)
	}

	g := &Guard{key: key}
	if spec.breaker != nil {
		if spec.breaker.Name == "" {
			spec.breaker.Name = key
		}
		g.breaker = NewCircuitBreaker(*spec.breaker)
	}
	if spec.limiter != nil {
		if spec.limiter.Name == "" {
			spec.limiter.Name = key
		}
		g.limiter = NewSlidingWindowLimiter(*spec.limiter)
	}
	if spec.bulkhead != nil {
		if spec.bulkhead.Name == "" {
			spec.bulkhead.Name = key
		}
		g.bulkhead = NewBulkhead(*spec.bulkhead)
	}
	g.retry = spec.retry
	return g
}

// Guard creates a guard whose limiter, breaker, and bulkhead are the shared
// keyed instances from the registry. Two guards built for the same key see
// the same window and the same breaker state.
func (r *Registry) Guard(key string, opts ...GuardOption) *Guard {
	var spec guardSpec
	for _, opt := range opts {
		opt(&spec)
	}

	g := &Guard{key: key}
	if spec.breaker != nil {
		g.breaker = r.Breaker(key, *spec.breaker)
	}
	if spec.limiter != nil {
		g.limiter = r.Limiter(key, *spec.limiter)
	}
	if spec.bulkhead != nil {
		g.bulkhead = r.Bulkhead(key, *spec.bulkhead)
	}
	g.retry = spec.retry
	return g
}

// Key returns the guard's key.
func (g *Guard) Key() string {
	return g.key
}

// Execute runs op through the configured guard chain.
func (g *Guard) Execute(ctx context.Context, op func() error) error {
	run := op

	if g.retry != nil {
		inner := run
		cfg := *g.retry
		run = func() error {
			return RetryFunc(ctx, cfg, inner)
		}
	}

	if g.bulkhead != nil {
		inner := run
		run = func() error {
			return g.bulkhead.Execute(ctx, inner)
		}
	}

	if g.limiter != nil {
		inner := run
		run = func() error {
			return g.limiter.Execute(ctx, inner)
		}
	}

	if g.breaker != nil {
		inner := run
		run = func() error {
			return g.breaker.Execute(inner)
		}
	}

	return run()
}

// Guarded runs a value-returning operation through the guard chain.
func Guarded[T any](ctx context.Context, g *Guard, fn func() (T, error)) (T, error) {
	var result T
	err := g.Execute(ctx, func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
