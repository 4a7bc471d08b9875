package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/guardkit/guardkit/errors"
	"github.com/guardkit/guardkit/resilience"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Registry holds the per-key limiters. A private registry is created when nil.
	Registry *resilience.Registry
	// MaxRequests is the maximum number of requests allowed per window per key.
	MaxRequests int
	// Window is the sliding window size. Defaults to one minute.
	Window time.Duration
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a Gin middleware that applies per-key sliding-window rate
// limiting. Requests over the limit are rejected with 429 and a Retry-After
// header; handlers never block waiting for a slot.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Registry == nil {
		cfg.Registry = resilience.NewRegistry()
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	limiterCfg := resilience.RateLimiterConfig{
		MaxRequests: cfg.MaxRequests,
		Window:      cfg.Window,
		Strategy:    resilience.StrategyReject,
	}

	return func(c *gin.Context) {
		limiter := cfg.Registry.Limiter(cfg.KeyFunc(c), limiterCfg)

		if !limiter.Allow() {
			retryAfter := limiter.RetryAfter()
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.MaxRequests()))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apperrors.RateLimitedFor(retryAfter).ToResponse())
			return
		}

		remaining := limiter.MaxRequests() - limiter.InWindow()
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.MaxRequests()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

// retryAfterSeconds rounds a wait up to whole seconds, minimum 1, so clients
// never retry before the window actually frees a slot.
func retryAfterSeconds(wait time.Duration) int {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserBasedKey extracts the user_id from the context, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if uid, exists := c.Get("user_id"); exists {
		if s, ok := uid.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}
