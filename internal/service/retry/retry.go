// Package retry is a bounded retry combinator with pluggable backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrAttemptsExceeded = errors.New("retry attempts exceeded")

// BackoffFunc returns the delay before the given retry attempt.
// The first attempt is 0 and runs without delay.
type BackoffFunc func(attempt int) time.Duration

// Exponential doubles the base delay on every attempt: base, 2*base, 4*base...
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << attempt
	}
}

// Do runs fn up to attempts times, sleeping backoff(attempt) between tries.
// It stops early when fn succeeds or ctx is done. The last error is kept.
func Do(ctx context.Context, attempts int, backoff BackoffFunc, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(lastErr, ctx.Err())
			case <-timer.C:
			}
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: %w", ErrAttemptsExceeded, lastErr)
}
