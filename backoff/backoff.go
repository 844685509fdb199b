package backoff

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

const maxShift = 62

// Exponential calculates an exponential delay as base * 2^attempt with
// overflow protection. Negative attempts are treated as 0.
func Exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1 << attempt)

	baseInt := int64(base)
	if baseInt > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(baseInt * multiplier)
}

// Cap bounds a delay at max. A non-positive max leaves the delay unchanged.
func Cap(delay, max time.Duration) time.Duration {
	if max > 0 && delay > max {
		return max
	}

	return delay
}

// FullJitter returns a random duration in [0, delay). Returns 0 for zero or
// negative delays. This implements the "Full Jitter" strategy recommended
// for retry storms against a shared dependency.
func FullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(delay)))
}

// SleepWithContext sleeps for the given duration but respects context
// cancellation. Returns nil if the sleep completes, or an error if the
// context is cancelled first. Returns immediately for non-positive durations.
func SleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}
