package retry

import (
	"context"
	"errors"
	"time"
)

// SleepFunc waits for the given duration or until the context is done.
// Injectable so tests can observe the backoff sequence without waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Runner.
type Option func(*Runner)

// WithSleeper replaces the default context-aware sleep.
// Nil sleepers are ignored.
func WithSleeper(fn SleepFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.sleep = fn
		}
	}
}

// Runner executes a function with automatic retries and backoff between
// attempts. A Runner is immutable after construction and safe for
// concurrent use.
type Runner struct {
	maxRetries int
	strategy   BackoffStrategy
	sleep      SleepFunc
}

// New creates a Runner that performs up to maxRetries retries after the
// initial attempt, waiting per strategy between attempts. A nil strategy
// falls back to DefaultBackoff.
func New(maxRetries int, strategy BackoffStrategy, opts ...Option) *Runner {
	if strategy == nil {
		strategy = DefaultBackoff()
	}
	r := &Runner{
		maxRetries: max(maxRetries, 0),
		strategy:   strategy,
		sleep:      defaultSleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxRetries returns the configured retry budget.
func (r *Runner) MaxRetries() int {
	return r.maxRetries
}

// Do runs fn until it succeeds or the retry budget is exhausted.
// The last error is returned as-is so callers can inspect it with
// errors.Is and errors.As. Context cancellation aborts immediately and
// is never retried.
func (r *Runner) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, r.strategy.NextInterval(attempt)); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}
	}
	return lastErr
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
