// Package dispatch runs fire-and-forget tasks on a bounded background queue.
//
// A fixed worker pool drains a fixed-capacity queue; when the queue is full,
// Enqueue drops the task and logs instead of blocking, so an incident on a
// peer cannot fan out into unbounded concurrent outbound calls.
package dispatch
