// Package observability provides OpenTelemetry tracing and metrics
// integration for guarded calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "guard.execute")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewGuardMetrics(observability.Meter("my-service"))
//
// GuardMetrics exposes hook adapters that plug directly into the resilience
// package's callback fields (OnRetry, OnLimit, OnStateChange, OnReject), so a
// configured guard reports retries, throttling, and breaker transitions
// without any code in the call path.
package observability
