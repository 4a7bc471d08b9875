package middleware

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/guardkit/guardkit/errors"
	"github.com/guardkit/guardkit/resilience"
)

// CircuitBreakerConfig configures the circuit breaking middleware.
type CircuitBreakerConfig struct {
	// Registry holds the per-key breakers. A private registry is created when nil.
	Registry *resilience.Registry
	// FailureThreshold is the number of consecutive 5xx responses that opens
	// a route's breaker. Zero uses the resilience package default.
	FailureThreshold int
	// ResetTimeout is how long an open breaker rejects before probing again.
	// Zero uses the resilience package default.
	ResetTimeout time.Duration
	// KeyFunc extracts the breaker key from a request. Defaults to the route.
	KeyFunc func(*gin.Context) string
}

// CircuitBreaker returns a Gin middleware that trips a per-route breaker on
// consecutive 5xx responses. While open, requests are rejected with 503
// without invoking the handler.
func CircuitBreaker(cfg CircuitBreakerConfig) gin.HandlerFunc {
	if cfg.Registry == nil {
		cfg.Registry = resilience.NewRegistry()
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = RouteBasedKey
	}

	breakerCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		ResetTimeout:     cfg.ResetTimeout,
	}

	return func(c *gin.Context) {
		key := cfg.KeyFunc(c)
		cb := cfg.Registry.Breaker(key, breakerCfg)

		err := cb.Execute(func() error {
			c.Next()
			if status := c.Writer.Status(); status >= http.StatusInternalServerError {
				return apperrors.UpstreamError(key, status)
			}
			return nil
		})
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				apperrors.CircuitOpen(key).ToResponse())
		}
	}
}

// RouteBasedKey extracts the matched route pattern for use as a breaker key,
// falling back to the raw path for unmatched requests.
func RouteBasedKey(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
