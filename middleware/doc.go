// Package middleware provides Gin middleware backed by the resilience
// package: per-key sliding-window rate limiting, per-route circuit breaking,
// and request ID injection.
//
//	reg := resilience.NewRegistry()
//	r := gin.New()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RateLimit(middleware.RateLimitConfig{Registry: reg, MaxRequests: 60}))
//	r.Use(middleware.CircuitBreaker(middleware.CircuitBreakerConfig{Registry: reg}))
//
// Sharing a registry between middleware and outbound guards keeps HTTP
// throttling and upstream call throttling on the same per-key state.
package middleware
