// Package config provides configuration loading for guardkit.
//
// It uses Viper to load a YAML config file plus optional .env and process
// environment overrides, and unmarshals per-key guard policies:
//
//	logging:
//	  level: info
//	guards:
//	  coingecko:
//	    retry: {max_retries: 3, initial_delay: 100ms, multiplier: 2, jitter: true}
//	    rate_limit: {max_requests: 30, window: 60s, strategy: delay}
//	    circuit_breaker: {failure_threshold: 5, reset_timeout: 30s, success_threshold: 2}
//
// Environment variables override file values using underscore-separated
// paths (e.g. GUARDKIT_LOGGING_LEVEL).
package config
