// Package resilience provides patterns for guarding calls to unreliable
// upstream dependencies.
//
// This package includes:
//   - Retry: retries failed operations with exponential backoff and jitter
//   - SlidingWindowLimiter: admits at most N calls per key per rolling window
//   - CircuitBreaker: per-key closed/open/half-open state machine that fails fast
//   - Bulkhead: limits concurrent access to isolate failures
//   - Guard: composes the patterns around a raw operation
//
// State is partitioned by key through a Registry so each upstream dependency
// gets its own limiter and breaker. Everything is process-local; there is no
// distributed coordination.
//
//	reg := resilience.NewRegistry()
//	g := reg.Guard("prices",
//	    resilience.WithCircuitBreaker(resilience.DefaultCircuitBreakerConfig("prices")),
//	    resilience.WithRateLimit(resilience.RateLimiterConfig{MaxRequests: 30, Window: time.Minute}),
//	    resilience.WithRetry(resilience.DefaultRetryConfig()),
//	)
//
//	quote, err := resilience.Guarded(ctx, g, fetchQuote)
package resilience
