package util

import (
	"context"
	"errors"
	"time"
)

// DefaultRetryBaseDelay is the starting delay for exponential backoff when
// the caller does not specify one.
const DefaultRetryBaseDelay = 500 * time.Millisecond

// RetryWithBackoff calls fn up to maxTries times until it returns a nil
// error, sleeping between attempts with exponential backoff (baseDelay,
// 2*baseDelay, 4*baseDelay, ...). If maxTries <= 0, it defaults to 1; if
// baseDelay <= 0, DefaultRetryBaseDelay is used.
//
// Context cancellation short-circuits both the attempts and the backoff
// sleep: ctx.Err() is returned as soon as the context is done, and a
// context error returned by fn is never retried.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxTries int,
	baseDelay time.Duration,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	if maxTries <= 0 {
		maxTries = 1
	}
	if baseDelay <= 0 {
		baseDelay = DefaultRetryBaseDelay
	}

	var lastErr error
	delay := baseDelay
	for i := 0; i < maxTries; i++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if i > 0 {
			if err := sleepWithContext(ctx, delay); err != nil {
				return zero, err
			}
			delay *= 2
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
