package config

import (
	"fmt"
	"time"

	"github.com/guardkit/guardkit/logger"
	"github.com/guardkit/guardkit/resilience"
	"github.com/guardkit/guardkit/validation"
)

// Config is the root configuration for guardkit.
type Config struct {
	Logging logger.Config          `yaml:"logging" mapstructure:"logging"`
	Guards  map[string]GuardPolicy `yaml:"guards" mapstructure:"guards"`
}

// GuardPolicy describes the guards applied to one key. Nil sections mean the
// corresponding guard is absent.
type GuardPolicy struct {
	Retry          *RetryPolicy          `yaml:"retry" mapstructure:"retry"`
	RateLimit      *RateLimitPolicy      `yaml:"rate_limit" mapstructure:"rate_limit"`
	CircuitBreaker *CircuitBreakerPolicy `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Concurrency    *ConcurrencyPolicy    `yaml:"concurrency" mapstructure:"concurrency"`
}

// RetryPolicy configures backoff retries for a key.
type RetryPolicy struct {
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
	InitialDelay time.Duration `yaml:"initial_delay" mapstructure:"initial_delay" validate:"gte=0"`
	MaxDelay     time.Duration `yaml:"max_delay" mapstructure:"max_delay" validate:"gte=0"`
	Multiplier   float64       `yaml:"multiplier" mapstructure:"multiplier" validate:"omitempty,gt=1"`
	Jitter       bool          `yaml:"jitter" mapstructure:"jitter"`
}

// RateLimitPolicy configures the sliding-window limiter for a key.
type RateLimitPolicy struct {
	MaxRequests int           `yaml:"max_requests" mapstructure:"max_requests" validate:"gte=0"`
	Window      time.Duration `yaml:"window" mapstructure:"window" validate:"gte=0"`
	Strategy    string        `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=queue delay reject"`
}

// CircuitBreakerPolicy configures the circuit breaker for a key.
type CircuitBreakerPolicy struct {
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=0"`
	ResetTimeout     time.Duration `yaml:"reset_timeout" mapstructure:"reset_timeout" validate:"gte=0"`
	SuccessThreshold int           `yaml:"success_threshold" mapstructure:"success_threshold" validate:"gte=0"`
}

// ConcurrencyPolicy configures the optional bulkhead for a key.
type ConcurrencyPolicy struct {
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`
	MaxWait       time.Duration `yaml:"max_wait" mapstructure:"max_wait" validate:"gte=0"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration, including every guard policy.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	for key, policy := range c.Guards {
		if err := policy.Validate(); err != nil {
			return fmt.Errorf("guard %q: %w", key, err)
		}
	}
	return nil
}

// Validate validates one guard policy.
func (p GuardPolicy) Validate() error {
	if p.Retry != nil {
		if err := validation.Validate(*p.Retry); err != nil {
			return err
		}
	}
	if p.RateLimit != nil {
		if err := validation.Validate(*p.RateLimit); err != nil {
			return err
		}
	}
	if p.CircuitBreaker != nil {
		if err := validation.Validate(*p.CircuitBreaker); err != nil {
			return err
		}
	}
	if p.Concurrency != nil {
		if err := validation.Validate(*p.Concurrency); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the policy into guard options for the resilience package.
func (p GuardPolicy) Options() []resilience.GuardOption {
	var opts []resilience.GuardOption

	if p.CircuitBreaker != nil {
		opts = append(opts, resilience.WithCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: p.CircuitBreaker.FailureThreshold,
			ResetTimeout:     p.CircuitBreaker.ResetTimeout,
			SuccessThreshold: p.CircuitBreaker.SuccessThreshold,
		}))
	}
	if p.RateLimit != nil {
		opts = append(opts, resilience.WithRateLimit(resilience.RateLimiterConfig{
			MaxRequests: p.RateLimit.MaxRequests,
			Window:      p.RateLimit.Window,
			Strategy:    resilience.Strategy(p.RateLimit.Strategy),
		}))
	}
	if p.Concurrency != nil {
		opts = append(opts, resilience.WithBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: p.Concurrency.MaxConcurrent,
			MaxWait:       p.Concurrency.MaxWait,
		}))
	}
	if p.Retry != nil {
		opts = append(opts, resilience.WithRetry(resilience.RetryConfig{
			MaxRetries:   p.Retry.MaxRetries,
			InitialDelay: p.Retry.InitialDelay,
			MaxDelay:     p.Retry.MaxDelay,
			Multiplier:   p.Retry.Multiplier,
			Jitter:       p.Retry.Jitter,
		}))
	}

	return opts
}

// BuildGuards constructs one shared guard per configured key.
func BuildGuards(reg *resilience.Registry, guards map[string]GuardPolicy) map[string]*resilience.Guard {
	built := make(map[string]*resilience.Guard, len(guards))
	for key, policy := range guards {
		built[key] = reg.Guard(key, policy.Options()...)
	}
	return built
}
