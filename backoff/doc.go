// Package backoff provides retry delay helpers with exponential growth and
// optional full jitter.
//
// Use Exponential (optionally capped and jittered by the caller) for retry
// loops and SleepWithContext to wait while respecting cancellation.
package backoff
