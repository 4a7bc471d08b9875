// Package logger provides structured logging for guardkit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. Guard components log
// retry attempts, rate-limit waits, and breaker transitions here when no
// explicit callback is injected.
//
// # Usage
//
//	log := logger.Get("resilience")
//	log.Warn("retrying operation", logger.Fields("attempt", 2, "delay_ms", 200))
package logger
