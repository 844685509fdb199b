package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wizarding-anonymous/cryo-sub004/backoff"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

// ErrAttemptTimeout is returned when a single attempt exceeds the policy's
// per-attempt timeout. It is always classified as retryable.
var ErrAttemptTimeout = errors.New("retry: attempt timed out")

// Policy configures the retry loop. Immutable; one instance per client or
// call-site, overridable per call via Executor.DoWithPolicy.
type Policy struct {
	// Attempts is the total invocation budget, including the first try.
	Attempts uint
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// PerAttemptTimeout bounds each individual attempt.
	PerAttemptTimeout time.Duration
	// Jitter randomizes each delay over [0, delay). Off by default to keep
	// the documented min(base * 2^(n-1), max) schedule; turn it on when many
	// callers share one dependency and synchronized retry storms are a risk.
	Jitter bool
}

// DefaultPolicy provides the request-path defaults.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:          3,
		BaseDelay:         200 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		PerAttemptTimeout: 2 * time.Second,
	}
}

// Delay returns the backoff before the given attempt (attempt >= 2):
// min(BaseDelay * 2^(attempt-2), MaxDelay), optionally jittered.
func (p Policy) Delay(attempt uint) time.Duration {
	delay := backoff.Cap(backoff.Exponential(p.BaseDelay, int(attempt)-2), p.MaxDelay)

	if p.Jitter {
		delay = backoff.FullJitter(delay)
	}

	return delay
}

func (p Policy) normalized() Policy {
	if p.Attempts == 0 {
		p.Attempts = 1
	}

	return p
}

// Operation is a fallible unit of work. The context carries the per-attempt
// deadline; implementations should pass it to their I/O.
type Operation func(ctx context.Context) (any, error)

// StatusCoder is implemented by errors that carry an HTTP status code, used
// to classify failures as client errors.
type StatusCoder interface {
	StatusCode() int
}

// Retryable reports whether an error is worth retrying. Errors carrying a
// status in [400,500) are client errors and are not retried, except 429
// which is worth waiting out. Everything else (timeouts, 5xx, transport
// failures) is retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		code := coder.StatusCode()
		if code >= http.StatusBadRequest && code < http.StatusInternalServerError &&
			code != http.StatusTooManyRequests {
			return false
		}
	}

	return true
}

// Executor runs operations under a retry policy.
type Executor struct {
	policy Policy
	logger log.Logger
}

// NewExecutor creates an executor with the given default policy.
func NewExecutor(policy Policy, logger log.Logger) *Executor {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Executor{policy: policy.normalized(), logger: logger}
}

// Do runs the operation under the executor's default policy.
func (e *Executor) Do(ctx context.Context, op Operation) (any, error) {
	return e.DoWithPolicy(ctx, e.policy, op)
}

// DoWithPolicy runs the operation under a per-call policy override.
func (e *Executor) DoWithPolicy(ctx context.Context, policy Policy, op Operation) (any, error) {
	policy = policy.normalized()

	var lastErr error

	for attempt := uint(1); attempt <= policy.Attempts; attempt++ {
		if attempt > 1 {
			if err := backoff.SleepWithContext(ctx, policy.Delay(attempt)); err != nil {
				return nil, err
			}
		}

		result, err := runAttempt(ctx, policy.PerAttemptTimeout, op)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !Retryable(err) {
			e.logger.Debugf("Attempt %d failed with non-retryable error: %v", attempt, err)

			return nil, err
		}

		e.logger.Warnf("Attempt %d/%d failed: %v", attempt, policy.Attempts, err)
	}

	return nil, lastErr
}

// runAttempt races the operation against the per-attempt timeout. The result
// channel is owned by this attempt and buffered: a completion that arrives
// after the timeout fired parks there unread, so it can never be mistaken
// for a later attempt's result or mutate shared bookkeeping twice.
func runAttempt(ctx context.Context, timeout time.Duration, op Operation) (any, error) {
	attemptCtx := ctx

	cancel := func() {}
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	defer cancel()

	type outcome struct {
		value any
		err   error
	}

	done := make(chan outcome, 1)

	go func() {
		value, err := op(attemptCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %v", ErrAttemptTimeout, timeout)
		}

		return nil, fmt.Errorf("attempt aborted: %w", attemptCtx.Err())
	}
}
