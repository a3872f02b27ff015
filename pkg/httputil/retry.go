package httputil

import (
	"context"
	"errors"
	"time"
)

// Default retry policy for HTTP-backed stores.
const (
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond
)

// RetryableError marks an error as transient. Wrap network failures and
// 5xx responses with it so that [Retry] attempts the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err in a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Retry executes fn up to attempts times, doubling delay after each
// failure. Only errors marked with [RetryableError] are retried; any other
// error is returned at once. The last error is returned when every attempt
// fails, or ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err, or any error it wraps, is a
// [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
