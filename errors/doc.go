// Package errors provides unified error handling for guarded operations.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection so callers can branch on a small closed set of
// failure kinds (transient, permanent, rate-limited, circuit-open, cancelled).
package errors
