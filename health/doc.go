// Package health tracks the last-known health of every peer dependency.
//
// The Monitor runs a lightweight representative call per dependency on a
// fixed interval, through a dedicated probe circuit with tighter settings
// than the request path. Readiness checks consume
// AreAllCriticalServicesHealthy; diagnostics consume HealthStatus.
package health
