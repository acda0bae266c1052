package retry

import (
	"context"
	"math"
	"time"
)

// Policy configures one retry layer. The zero value selects the documented
// defaults at run time, so policies can be embedded in option structs without
// ceremony. Policies are immutable and safe to share across invocations.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 select the default of 3.
	MaxAttempts int

	// Base is the exponential backoff seed: the wait before the second
	// attempt. Zero selects 200ms.
	Base time.Duration

	// Min is the lower clamp applied to every computed wait. Default: 0.
	Min time.Duration

	// Max is the upper clamp applied to every computed wait. Zero selects 30s.
	Max time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 3
	}
	if p.Base == 0 {
		p.Base = 200 * time.Millisecond
	}
	if p.Max == 0 {
		p.Max = 30 * time.Second
	}
	return p
}

// Backoff returns the clamped wait preceding the retry after attempt n
// (1-based): clamp(Base * 2^(n-1), Min, Max).
func (p Policy) Backoff(attempt int) time.Duration {
	wait := float64(p.Base) * math.Pow(2, float64(attempt-1))
	if wait > float64(p.Max) {
		wait = float64(p.Max)
	}
	if wait < float64(p.Min) {
		return p.Min
	}
	return time.Duration(wait)
}

// Classifier reports whether an error should consume retry budget. A nil
// Classifier treats every error as retryable.
type Classifier func(error) bool

// Hook observes an upcoming retry. It fires before every attempt after the
// first, receives the attempt number about to run and the error that caused
// it, and must not alter control flow.
type Hook func(attempt int, lastErr error)

// Do runs op under policy p. On success the result is returned immediately.
// A retryable failure waits out the backoff, then re-runs op; a
// non-retryable failure propagates at once without consuming further budget.
// When the budget is exhausted the last error is returned unchanged, never
// wrapped, so callers always see the precise root cause.
//
// Waiting is synchronous: one invocation runs one attempt at a time. The
// context is honored between attempts; cancellation during a wait returns
// ctx.Err().
func Do[T any](ctx context.Context, p Policy, classify Classifier, before Hook, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if before != nil {
				before(attempt, lastErr)
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(p.Backoff(attempt - 1)):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if classify != nil && !classify(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
