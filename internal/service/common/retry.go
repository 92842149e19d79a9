package common

import (
	"context"
	"time"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
)

// SleepFunc waits for the given duration or until the context is done.
// Tests substitute it to avoid real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry runs fn up to attempts times, sleeping base, 2*base, 4*base, ...
// between attempts. Only transient errors are retried; auth errors and other
// non-transient failures propagate immediately.
func Retry(ctx context.Context, attempts int, base time.Duration, sleep SleepFunc, fn func(ctx context.Context) error) error {
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	delay := base
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return apperrors.Wrap(err, apperrors.CodeUnavailable, "retry interrupted")
			}
			delay *= 2
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !apperrors.IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
