package circuitbreaker

import (
	"errors"
	"time"
)

// Dependency identifies a peer service with its own circuit. Keeping this
// typed (instead of free-form strings) prevents a typo from silently minting
// a new untracked circuit: every dependency is declared as a constant and
// registered at startup.
type Dependency string

// Known peer dependencies of this service.
const (
	UserService         Dependency = "user-service"
	NotificationService Dependency = "notification-service"
	AchievementService  Dependency = "achievement-service"
)

// Probe derives the dependency name used by health-monitor probe circuits,
// which carry a tighter configuration than the request-path circuit.
func (d Dependency) Probe() Dependency {
	return d + ":probe"
}

// State represents the circuit state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
	StateUnknown  State = "unknown"
)

var (
	// ErrCircuitOpen is returned when the circuit short-circuits a call;
	// the wrapped function was never invoked.
	ErrCircuitOpen = errors.New("circuitbreaker: circuit open")

	// ErrNotRegistered is returned by Execute for a dependency that was
	// never registered with the manager.
	ErrNotRegistered = errors.New("circuitbreaker: dependency not registered")
)

// Config holds per-dependency circuit breaker configuration.
type Config struct {
	// FailureThreshold is the failure count at which a closed circuit opens.
	FailureThreshold uint32
	// ResetTimeout is how long an open circuit waits before allowing a
	// half-open probe through.
	ResetTimeout time.Duration
}

// DefaultConfig provides the request-path defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		ResetTimeout:     60 * time.Second,
	}
}

// ProbeConfig provides the tighter settings used by health-monitor probe
// circuits: fewer failures to open, shorter cooldown before re-probing.
func ProbeConfig() Config {
	return Config{
		FailureThreshold: 3,
		ResetTimeout:     15 * time.Second,
	}
}

// Option overrides circuit configuration for a single Execute call.
type Option func(*Config)

// WithFailureThreshold overrides the failure threshold for one call.
func WithFailureThreshold(threshold uint32) Option {
	return func(cfg *Config) { cfg.FailureThreshold = threshold }
}

// WithResetTimeout overrides the reset timeout for one call.
func WithResetTimeout(timeout time.Duration) Option {
	return func(cfg *Config) { cfg.ResetTimeout = timeout }
}

// Stats is a point-in-time snapshot of one circuit.
type Stats struct {
	Name        Dependency `json:"name"`
	State       State      `json:"state"`
	Failures    uint32     `json:"failures"`
	Successes   uint32     `json:"successes"`
	LastFailure *time.Time `json:"last_failure,omitempty"`
}

// Manager manages circuit breakers for external dependencies.
type Manager interface {
	// Register declares a dependency and its configuration. Registering an
	// already-known dependency replaces its configuration but keeps state.
	Register(dep Dependency, cfg Config)

	// Execute runs a function through the named circuit. Options override
	// the registered configuration for this call only.
	Execute(dep Dependency, fn func() (any, error), opts ...Option) (any, error)

	// IsAvailable reports whether calls to the dependency pass through.
	// Unknown dependencies are treated as available.
	IsAvailable(dep Dependency) bool

	// Stats returns a snapshot of the named circuit. Unknown dependencies
	// report StateUnknown.
	Stats(dep Dependency) Stats

	// AllStats returns a snapshot of every registered circuit.
	AllStats() map[Dependency]Stats

	// Reset forces the circuit back to closed with zeroed counters.
	Reset(dep Dependency)

	// RegisterStateChangeListener subscribes to state transitions.
	RegisterStateChangeListener(listener StateChangeListener)
}

// StateChangeListener is notified when a circuit changes state.
type StateChangeListener interface {
	OnStateChange(dep Dependency, from State, to State)
}
