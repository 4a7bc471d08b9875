package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/guardkit/guardkit/errors"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows requests to pass through.
	StateClosed State = iota
	// StateOpen blocks all requests until the reset timeout elapses.
	StateOpen
	// StateHalfOpen allows limited trial requests to probe recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Common circuit breaker errors.
var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this circuit breaker for metrics/logging. Usually the guard key.
	Name string
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold int
	// ResetTimeout is how long the circuit stays open before a half-open trial.
	ResetTimeout time.Duration
	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the circuit.
	SuccessThreshold int
	// IsFailure decides whether an error counts against the breaker.
	// Defaults to DefaultIsFailure.
	IsFailure func(error) bool
	// OnStateChange is called synchronously on every transition.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		SuccessThreshold: 1,
	}
}

// DefaultIsFailure counts every error except guard rejections, cancellation,
// and permanent (non-retryable) application errors. A validation error says
// nothing about the health of the dependency.
func DefaultIsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrBulkheadFull) || errors.Is(err, ErrBulkheadTimeout) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return true
}

// CircuitBreaker implements the circuit breaker pattern.
// It prevents cascading failures by failing fast when an upstream is unhealthy.
//
// States:
//   - Closed: normal operation, requests pass through
//   - Open: upstream is unhealthy, requests fail immediately with ErrCircuitOpen
//   - Half-Open: trial state, limited requests probe recovery
//
// Transitions happen only on call attempts and recorded results; querying
// State never mutates the machine.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	halfOpenCalls int
	lastFailure   time.Time
	nextAttempt   time.Time
}

// NewCircuitBreaker creates a new circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = DefaultIsFailure
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the given function through the circuit breaker.
// Returns ErrCircuitOpen without invoking fn if the circuit is open and the
// reset timeout has not elapsed.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allowRequest() {
		return ErrCircuitOpen
	}

	err := fn()
	cb.recordResult(err)
	return err
}

// State returns the current circuit breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset returns the breaker to the closed state with zeroed counters,
// regardless of prior history.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.toState(StateClosed)
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0
	cb.nextAttempt = time.Time{}
}

// allowRequest checks if a request should be allowed, moving an expired open
// circuit to half-open on the way.
func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Now().Before(cb.nextAttempt) {
			return false
		}
		cb.toState(StateHalfOpen)
		cb.halfOpenCalls++
		return true
	case StateHalfOpen:
		// Admit at most SuccessThreshold trials per half-open episode.
		if cb.halfOpenCalls < cb.config.SuccessThreshold {
			cb.halfOpenCalls++
			return true
		}
		return false
	default:
		return false
	}
}

// recordResult records the outcome of an executed request.
func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.config.IsFailure(err) {
		cb.onFailure()
		return
	}
	if err == nil {
		cb.onSuccess()
		return
	}

	// Errors that are neither success nor dependency failure (rejections,
	// cancellation, permanent input errors) leave the counters untouched.
	// A half-open trial with such an outcome must still release its slot,
	// or neutral results would exhaust the episode and wedge the breaker open.
	if cb.state == StateHalfOpen && cb.halfOpenCalls > 0 {
		cb.halfOpenCalls--
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.toState(StateClosed)
		}
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.lastFailure = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.open()
		}
	case StateHalfOpen:
		// A single trial failure reopens immediately with a fresh cycle.
		cb.open()
	}
}

func (cb *CircuitBreaker) open() {
	cb.nextAttempt = time.Now().Add(cb.config.ResetTimeout)
	cb.toState(StateOpen)
}

// toState transitions to a new state. Counters reset on every transition so
// each episode starts a fresh counting cycle.
func (cb *CircuitBreaker) toState(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}
