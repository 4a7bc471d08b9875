package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transient errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the upstream is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to an upstream.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUpstreamError indicates a 5xx-class error from an upstream.
	ErrCodeUpstreamError ErrorCode = "UPSTREAM_ERROR"
	// ErrCodeRateLimited indicates too many requests in the current window.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Guard rejections
const (
	// ErrCodeCircuitOpen indicates the circuit breaker is open and failing fast.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
	// ErrCodeCancelled indicates the caller cancelled before an attempt started.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Permanent errors (never retried)
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeUpstreamError:      true,
	ErrCodeRateLimited:        true,
	// Circuit-open rejections must surface immediately; retrying them would
	// defeat the fail-fast contract.
	ErrCodeCircuitOpen: false,
	ErrCodeCancelled:   false,
	ErrCodeInternal:    false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
