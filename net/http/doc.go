// Package http exposes the resilience layer's administrative and readiness
// surface as fiber handlers.
//
// The handlers are thin: they only invoke the core's public operations and
// render the structured results as JSON.
package http
