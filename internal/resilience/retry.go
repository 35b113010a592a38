// Package resilience provides a bounded retry policy: an explicit loop with
// exponential backoff and jitter, never recursive.
package resilience

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/draftlens/draftlens/internal/errors"
)

// Policy bounds a retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of the computed delay randomized away, in
	// [0,1]. Zero disables jitter.
	Jitter float64
}

// DefaultPolicy suits transient capture and recognition hiccups.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    500 * time.Millisecond,
		Jitter:      0.2,
	}
}

// Retry runs op until it succeeds, the error is not retryable, attempts run
// out, or the context ends. The last error is returned unwrapped so callers
// keep their error codes.
func Retry(ctx context.Context, p Policy, op func(context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = op(ctx)
		if last == nil {
			return nil
		}
		if !errors.IsRetryable(last) || attempt == p.MaxAttempts {
			return last
		}

		delay := backoff(p, attempt)
		slog.Debug("retrying after failure",
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
			"error", last)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return last
}

// backoff doubles the base delay per attempt, caps it, and subtracts up to
// Jitter of it at random so concurrent retriers spread out.
func backoff(p Policy, attempt int) time.Duration {
	delay := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter > 0 {
		delay -= time.Duration(p.Jitter * rand.Float64() * float64(delay))
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}
