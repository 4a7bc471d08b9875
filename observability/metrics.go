package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/guardkit/guardkit/resilience"
)

// GuardMetrics holds OpenTelemetry instruments for guarded calls.
type GuardMetrics struct {
	retryTotal      metric.Int64Counter
	retryDelay      metric.Float64Histogram
	limitedTotal    metric.Int64Counter
	limitWait       metric.Float64Histogram
	transitionTotal metric.Int64Counter
	rejectedTotal   metric.Int64Counter
}

// NewGuardMetrics creates guard instruments on the given meter.
func NewGuardMetrics(meter metric.Meter) (*GuardMetrics, error) {
	retryTotal, err := meter.Int64Counter("guard.retry.total",
		metric.WithDescription("Total number of retry waits"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.retry.total counter: %w", err)
	}

	retryDelay, err := meter.Float64Histogram("guard.retry.delay",
		metric.WithDescription("Backoff delay before each retry in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.retry.delay histogram: %w", err)
	}

	limitedTotal, err := meter.Int64Counter("guard.ratelimit.limited.total",
		metric.WithDescription("Total number of rate-limited calls (delayed or rejected)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.ratelimit.limited.total counter: %w", err)
	}

	limitWait, err := meter.Float64Histogram("guard.ratelimit.wait",
		metric.WithDescription("Wait imposed by the rate limiter in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.ratelimit.wait histogram: %w", err)
	}

	transitionTotal, err := meter.Int64Counter("guard.breaker.transitions.total",
		metric.WithDescription("Total circuit breaker state transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.breaker.transitions.total counter: %w", err)
	}

	rejectedTotal, err := meter.Int64Counter("guard.bulkhead.rejected.total",
		metric.WithDescription("Total calls rejected by the bulkhead"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating guard.bulkhead.rejected.total counter: %w", err)
	}

	return &GuardMetrics{
		retryTotal:      retryTotal,
		retryDelay:      retryDelay,
		limitedTotal:    limitedTotal,
		limitWait:       limitWait,
		transitionTotal: transitionTotal,
		rejectedTotal:   rejectedTotal,
	}, nil
}

// RecordRetry records one retry wait for a key.
func (m *GuardMetrics) RecordRetry(ctx context.Context, key string, attempt int, delay time.Duration) {
	attrs := metric.WithAttributes(attribute.String("key", key))
	m.retryTotal.Add(ctx, 1, attrs)
	m.retryDelay.Record(ctx, delay.Seconds(), attrs)
}

// RecordLimited records one delayed or rejected call for a key.
func (m *GuardMetrics) RecordLimited(ctx context.Context, key string, wait time.Duration) {
	attrs := metric.WithAttributes(attribute.String("key", key))
	m.limitedTotal.Add(ctx, 1, attrs)
	m.limitWait.Record(ctx, wait.Seconds(), attrs)
}

// RecordTransition records one circuit breaker state transition.
func (m *GuardMetrics) RecordTransition(ctx context.Context, key string, from, to resilience.State) {
	m.transitionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key", key),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	))
}

// RecordBulkheadReject records one call rejected by the bulkhead.
func (m *GuardMetrics) RecordBulkheadReject(ctx context.Context, key string) {
	m.rejectedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("key", key)))
}

// OnRetryHook adapts the metrics to a RetryConfig.OnRetry callback for key.
func (m *GuardMetrics) OnRetryHook(key string) func(attempt int, err error, delay time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		m.RecordRetry(context.Background(), key, attempt, delay)
	}
}

// OnLimitHook adapts the metrics to a RateLimiterConfig.OnLimit callback.
func (m *GuardMetrics) OnLimitHook() func(name string, wait time.Duration) {
	return func(name string, wait time.Duration) {
		m.RecordLimited(context.Background(), name, wait)
	}
}

// OnStateChangeHook adapts the metrics to a CircuitBreakerConfig.OnStateChange
// callback.
func (m *GuardMetrics) OnStateChangeHook() func(name string, from, to resilience.State) {
	return func(name string, from, to resilience.State) {
		m.RecordTransition(context.Background(), name, from, to)
	}
}

// OnRejectHook adapts the metrics to a BulkheadConfig.OnReject callback.
func (m *GuardMetrics) OnRejectHook() func(name string) {
	return func(name string) {
		m.RecordBulkheadReject(context.Background(), name)
	}
}
