// Package retry executes fallible operations with bounded retries,
// exponential backoff, and a per-attempt timeout race.
//
// Client errors (HTTP 4xx except 429) are never retried; everything else is
// retried up to the policy budget. Attempts within one call are strictly
// sequential.
package retry
