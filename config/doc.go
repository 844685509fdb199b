// Package config loads the resilience layer's configuration from the
// environment, with documented defaults for every knob.
package config
