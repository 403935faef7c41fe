// Package services: services/retry.go
// Fixed-delay retry wrapper for flaky Firestore reads. Only transient
// errors are retried; permission and validation failures surface
// immediately.
package services

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"festes-portal/logger"
)

// Default retry budget: tolerates roughly 30 seconds of backend
// unavailability before giving up.
const (
	DefaultRetryAttempts = 20
	DefaultRetryDelay    = 1500 * time.Millisecond
)

// RetryConfig bounds a retry loop: a maximum attempt count and a fixed
// delay between attempts. No backoff, no jitter.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryConfig is used by the read paths of the domain services.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: DefaultRetryAttempts, Delay: DefaultRetryDelay}
}

// IsTransient reports whether an error is worth retrying. Transient
// gRPC codes (backend briefly unavailable or overloaded) qualify;
// anything else, permission errors in particular, fails fast.
func IsTransient(err error) bool {
	s, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		return true
	default:
		return false
	}
}

// RetryRead invokes op up to cfg.Attempts times, waiting cfg.Delay
// between attempts. Non-transient errors and context cancellation abort
// the loop immediately; after the final attempt the last error is
// returned.
func RetryRead[T any](ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			logger.Debug.Printf("[RetryRead] Non-transient error on attempt %d, failing fast: %v", attempt, err)
			return zero, err
		}
		if attempt == cfg.Attempts {
			break
		}

		logger.Warn.Printf("[RetryRead] Attempt %d/%d failed: %v (retrying in %v)", attempt, cfg.Attempts, err, cfg.Delay)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	logger.Error.Printf("[RetryRead] All %d attempts failed: %v", cfg.Attempts, lastErr)
	return zero, lastErr
}
