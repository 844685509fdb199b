// Package clients contains the resilient clients for the peer services this
// service depends on: user, notification and achievement.
//
// Every operation composes the same stack: cache-aside lookup, then the
// dependency's circuit breaker wrapping a retrying network call, then a
// cache write. What happens on total failure is decided per operation, not
// generalized: critical reads propagate a classified error, reads with a
// documented safe fallback return it, and side-effect-only operations log
// and move on.
package clients
