// Package log defines the leveled logging interface shared by the resilience
// layer and its adapters.
//
// GoLogger writes through the standard library, NoneLogger discards
// everything (useful in tests), and the zap-backed logger is created with
// NewZapLogger for structured production output.
package log
