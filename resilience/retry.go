package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	apperrors "github.com/guardkit/guardkit/errors"
	"github.com/guardkit/guardkit/logger"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt, so a
	// persistently failing operation runs MaxRetries+1 times in total.
	MaxRetries int
	// InitialDelay is the delay before the first retry. Zero is honored and
	// retries immediately; negative values clamp to zero.
	InitialDelay time.Duration
	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration
	// Multiplier is the exponential backoff factor. Must be > 1.
	Multiplier float64
	// Jitter perturbs each delay by a uniform factor in [0.75, 1.25] so
	// concurrent callers don't retry in lockstep.
	Jitter bool
	// RetryIf determines if an error should be retried. Defaults to
	// DefaultRetryIf, which retries everything except cancellation.
	RetryIf func(error) bool
	// OnRetry is called before each wait with the 1-based number of the
	// attempt that just failed, its error, and the upcoming delay. When nil
	// the event is logged instead.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryIf:      DefaultRetryIf,
	}
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// RetryTransient retries only errors classified as transient (network,
// 5xx, 429). Permanent failures such as validation errors stop immediately.
func RetryTransient(err error) bool {
	return apperrors.IsRetryable(err)
}

// Retry executes a function with exponential backoff.
// Returns the result of the function or the last error unchanged if every
// attempt fails. Cancellation is checked before each attempt and during each
// wait; it never aborts an attempt already in flight.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	if cfg.Multiplier <= 1 {
		cfg.Multiplier = 2.0
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}

	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		if attempt == cfg.MaxRetries || !cfg.RetryIf(err) {
			return zero, err
		}

		delay := backoffDelay(attempt, cfg)

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, delay)
		} else {
			logger.Get("resilience").Warn("retrying operation", logger.Fields(
				logger.FieldAttempt, attempt+1,
				logger.FieldDelay, delay.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// backoffDelay computes the delay before retry number attempt+1.
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt))

	if cfg.Jitter {
		// Uniform in [0.75, 1.25].
		delay *= 0.75 + rand.Float64()*0.5
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}
