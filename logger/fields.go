package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldKey       = "key"
	FieldOperation = "operation"
	FieldAttempt   = "attempt"
	FieldDelay     = "delay_ms"
	FieldWait      = "wait_ms"
	FieldState     = "state"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldStrategy  = "strategy"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldRequestID = "request_id"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Warn("retrying", logger.Fields("attempt", 2, "delay_ms", 200))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}
