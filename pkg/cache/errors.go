package cache

import (
	"context"
	"errors"
	"time"

	dlerrors "github.com/matzehuels/deplist/pkg/errors"
)

// ErrNetwork marks a cache backend that could not be reached. It carries
// the NETWORK_ERROR code.
var ErrNetwork = dlerrors.New(dlerrors.ErrCodeNetwork, "cache backend unreachable")

// transientError marks a failure that may succeed on another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether err or anything it wraps was marked by
// [Retryable].
func IsRetryable(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

const retryAttempts = 3

// retryDelay is the wait before the second attempt. It doubles after each
// further failure.
var retryDelay = 100 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, fails permanently, or has
// been tried retryAttempts times. Only errors marked with [Retryable] are
// retried.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
