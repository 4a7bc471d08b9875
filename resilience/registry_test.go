package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistry_LazyCreationReturnsSameInstance(t *testing.T) {
	reg := NewRegistry()

	cb1 := reg.Breaker("prices", DefaultCircuitBreakerConfig(""))
	cb2 := reg.Breaker("prices", CircuitBreakerConfig{FailureThreshold: 99})
	if cb1 != cb2 {
		t.Error("expected the same breaker instance for one key")
	}

	l1 := reg.Limiter("prices", RateLimiterConfig{MaxRequests: 5})
	l2 := reg.Limiter("prices", RateLimiterConfig{MaxRequests: 100})
	if l1 != l2 {
		t.Error("expected the same limiter instance for one key")
	}
	if l1.MaxRequests() != 5 {
		t.Errorf("first config wins; expected 5, got %d", l1.MaxRequests())
	}
}

func TestRegistry_KeysAreIndependent(t *testing.T) {
	reg := NewRegistry()

	cbA := reg.Breaker("prices", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	cbB := reg.Breaker("yields", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})

	_ = cbA.Execute(func() error { return errors.New("fail") })

	if cbA.State() != StateOpen {
		t.Errorf("expected prices breaker open, got %s", cbA.State())
	}
	if cbB.State() != StateClosed {
		t.Errorf("yields breaker must be unaffected, got %s", cbB.State())
	}
}

func TestRegistry_ResetRestoresInitialState(t *testing.T) {
	reg := NewRegistry()

	cb := reg.Breaker("prices", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	l := reg.Limiter("prices", RateLimiterConfig{MaxRequests: 1, Window: time.Minute})

	_ = cb.Execute(func() error { return errors.New("fail") })
	l.Allow()

	reg.Reset("prices")

	if cb.State() != StateClosed {
		t.Errorf("expected closed breaker after reset, got %s", cb.State())
	}
	if l.InWindow() != 0 {
		t.Errorf("expected empty window after reset, got %d", l.InWindow())
	}

	// Unknown keys are a no-op.
	reg.Reset("never-seen")
}

func TestRegistry_ResetLeavesBulkheadOccupancyIntact(t *testing.T) {
	reg := NewRegistry()
	b := reg.Bulkhead("prices", BulkheadConfig{MaxConcurrent: 2})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	reg.Reset("prices")

	// The in-flight call still owns its slot and releases it on return.
	if got := b.InUse(); got != 1 {
		t.Errorf("expected 1 slot in use across reset, got %d", got)
	}
	close(release)
}

func TestRegistry_ResetAllAndKeys(t *testing.T) {
	reg := NewRegistry()

	reg.Limiter("b-key", RateLimiterConfig{MaxRequests: 1, Window: time.Minute}).Allow()
	reg.Limiter("a-key", RateLimiterConfig{MaxRequests: 1, Window: time.Minute}).Allow()
	reg.Breaker("c-key", DefaultCircuitBreakerConfig(""))

	keys := reg.Keys()
	if len(keys) != 3 || keys[0] != "a-key" || keys[1] != "b-key" || keys[2] != "c-key" {
		t.Errorf("expected sorted keys [a-key b-key c-key], got %v", keys)
	}

	reg.ResetAll()
	for _, key := range []string{"a-key", "b-key"} {
		if n := reg.Limiter(key, RateLimiterConfig{}).InWindow(); n != 0 {
			t.Errorf("key %s: expected empty window, got %d", key, n)
		}
	}
}
