package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/guardkit/guardkit/errors"
)

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	cfg := DefaultRetryConfig()
	callCount := 0

	result, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_AttemptsAreMaxRetriesPlusOne(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	}
	callCount := 0
	testErr := errors.New("persistent error")

	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("expected last error unchanged, got %v", err)
	}
	if callCount != 4 {
		t.Errorf("expected 4 calls (maxRetries+1), got %d", callCount)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	}
	callCount := 0

	result, err := Retry(context.Background(), cfg, func() (int, error) {
		callCount++
		if callCount < 4 {
			return 0, errors.New("temporary error")
		}
		return 42, nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %d", result)
	}
	if callCount != 4 {
		t.Errorf("expected 4 calls, got %d", callCount)
	}
}

func TestRetry_MaxRetriesZeroMeansSingleAttempt(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 0, InitialDelay: time.Millisecond}
	callCount := 0

	start := time.Now()
	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", errors.New("fail")
	})

	if err == nil {
		t.Error("expected error")
	}
	if callCount != 1 {
		t.Errorf("expected exactly 1 call, got %d", callCount)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("single attempt should not delay")
	}
}

func TestRetry_ExactBackoffWithoutJitter(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}

	var delays []time.Duration
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}

	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		return "", errors.New("fail")
	})

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("expected %d delays, got %d", len(want), len(delays))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestRetry_JitterStaysWithinBounds(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   5,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		Jitter:       true,
	}

	var delays []time.Duration
	var bases []time.Duration
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
		base := cfg.InitialDelay
		for i := 1; i < attempt; i++ {
			base *= 2
		}
		bases = append(bases, base)
	}

	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		return "", errors.New("fail")
	})

	for i, d := range delays {
		lo := time.Duration(float64(bases[i]) * 0.75)
		hi := time.Duration(float64(bases[i]) * 1.25)
		if d < lo || d > hi {
			t.Errorf("delay %d: %v outside [%v, %v]", i, d, lo, hi)
		}
	}
}

func TestRetry_DelayCappedAtMax(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   4,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
		Multiplier:   2.0,
	}

	var delays []time.Duration
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		delays = append(delays, delay)
	}

	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		return "", errors.New("fail")
	})

	for i, d := range delays {
		if d > cfg.MaxDelay {
			t.Errorf("delay %d: %v exceeds max %v", i, d, cfg.MaxDelay)
		}
	}
}

func TestRetry_NonRetryableHaltsImmediately(t *testing.T) {
	permanent := apperrors.InvalidInput("token", "unknown symbol")
	cfg := RetryConfig{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		RetryIf:      RetryTransient,
	}

	callCount := 0
	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("expected the permanent error back, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_RetryTransientRetries5xx(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		RetryIf:      RetryTransient,
	}

	callCount := 0
	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", apperrors.FromHTTPStatus("prices", 503)
	})

	if callCount != 3 {
		t.Errorf("expected 3 calls for a transient error, got %d", callCount)
	}
}

func TestRetry_CancelledBeforeAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	callCount := 0
	_, err := Retry(ctx, DefaultRetryConfig(), func() (string, error) {
		callCount++
		return "", errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if callCount != 0 {
		t.Errorf("expected 0 calls, got %d", callCount)
	}
}

func TestRetry_CancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	cfg := RetryConfig{
		MaxRetries:   10,
		InitialDelay: 100 * time.Millisecond,
		OnRetry:      func(int, error, time.Duration) {},
	}

	callCount := 0
	_, err := Retry(ctx, cfg, func() (string, error) {
		callCount++
		return "", errors.New("fail")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected the in-flight attempt to finish, got %d calls", callCount)
	}
}

func TestRetry_OnRetryReportsAttemptNumbers(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	}

	var attempts []int
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}

	_, _ = Retry(context.Background(), cfg, func() (string, error) {
		return "", errors.New("fail")
	})

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("expected attempts [1 2], got %v", attempts)
	}
}

func TestRetry_ZeroInitialDelayRetriesImmediately(t *testing.T) {
	var delays []time.Duration
	cfg := RetryConfig{
		MaxRetries: 2,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	}

	start := time.Now()
	callCount := 0
	_ = RetryFunc(context.Background(), cfg, func() error {
		callCount++
		return errors.New("fail")
	})

	if callCount != 3 {
		t.Errorf("expected 3 attempts, got %d", callCount)
	}
	for i, d := range delays {
		if d != 0 {
			t.Errorf("retry %d: expected zero delay, got %v", i+1, d)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate retries, took %v", elapsed)
	}
}

func TestRetryFunc(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond}

	callCount := 0
	err := RetryFunc(context.Background(), cfg, func() error {
		callCount++
		if callCount < 2 {
			return errors.New("once")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("expected 2 calls, got %d", callCount)
	}
}
