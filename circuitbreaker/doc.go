// Package circuitbreaker provides per-dependency circuit breaker
// orchestration for outbound service calls.
//
// Dependencies are registered once at startup with NewManager/Register, then
// every outbound call runs through Manager.Execute so failures are tracked
// consistently across callers. Registered listeners are notified of state
// transitions, which the health monitor uses to drive recovery probes.
package circuitbreaker
