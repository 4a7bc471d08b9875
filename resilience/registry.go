package resilience

import (
	"sort"
	"sync"
)

// Registry maps keys to shared limiter, breaker, and bulkhead state, one set
// per upstream dependency. Instances are created lazily on first use and live
// until explicitly reset; construct one Registry and pass it to call sites
// instead of relying on ambient globals.
type Registry struct {
	mu        sync.Mutex
	breakers  map[string]*CircuitBreaker
	limiters  map[string]*SlidingWindowLimiter
	bulkheads map[string]*Bulkhead
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		limiters:  make(map[string]*SlidingWindowLimiter),
		bulkheads: make(map[string]*Bulkhead),
	}
}

// Breaker returns the circuit breaker for key, creating it with config on
// first use. The config of an existing breaker is not changed.
func (r *Registry) Breaker(key string, config CircuitBreakerConfig) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[key]; ok {
		return cb
	}
	if config.Name == "" {
		config.Name = key
	}
	cb := NewCircuitBreaker(config)
	r.breakers[key] = cb
	return cb
}

// Limiter returns the sliding-window limiter for key, creating it with config
// on first use. The config of an existing limiter is not changed.
func (r *Registry) Limiter(key string, config RateLimiterConfig) *SlidingWindowLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[key]; ok {
		return l
	}
	if config.Name == "" {
		config.Name = key
	}
	l := NewSlidingWindowLimiter(config)
	r.limiters[key] = l
	return l
}

// Bulkhead returns the bulkhead for key, creating it with config on first use.
func (r *Registry) Bulkhead(key string, config BulkheadConfig) *Bulkhead {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bulkheads[key]; ok {
		return b
	}
	if config.Name == "" {
		config.Name = key
	}
	b := NewBulkhead(config)
	r.bulkheads[key] = b
	return b
}

// Reset returns the breaker and limiter for one key to their initial
// empty/closed form. Bulkhead occupancy is left alone: its only state is the
// set of in-flight calls, and each releases its own slot on return. Unknown
// keys are a no-op, so Reset is idempotent.
func (r *Registry) Reset(key string) {
	r.mu.Lock()
	cb := r.breakers[key]
	l := r.limiters[key]
	r.mu.Unlock()

	if cb != nil {
		cb.Reset()
	}
	if l != nil {
		l.Reset()
	}
}

// ResetAll resets every key in the registry.
func (r *Registry) ResetAll() {
	for _, key := range r.Keys() {
		r.Reset(key)
	}
}

// Keys returns the sorted set of keys with any registered state.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.breakers)+len(r.limiters)+len(r.bulkheads))
	for k := range r.breakers {
		seen[k] = struct{}{}
	}
	for k := range r.limiters {
		seen[k] = struct{}{}
	}
	for k := range r.bulkheads {
		seen[k] = struct{}{}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
