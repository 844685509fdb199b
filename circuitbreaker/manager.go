package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/wizarding-anonymous/cryo-sub004/log"
)

// record is the mutable circuit state for one dependency. Guarded by the
// manager mutex; failures only reset on the transition back to closed, so a
// stats snapshot taken after the circuit opened still shows what tripped it.
type record struct {
	cfg         Config
	state       State
	failures    uint32
	successes   uint32
	lastFailure time.Time
	probing     bool // a half-open probe call is in flight
}

type manager struct {
	records   map[Dependency]*record
	listeners []StateChangeListener
	mu        sync.RWMutex
	logger    log.Logger
}

// NewManager creates a circuit breaker manager. Dependencies must be
// registered before Execute is called for them.
//
//nolint:ireturn
func NewManager(logger log.Logger) Manager {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &manager{
		records:   make(map[Dependency]*record),
		listeners: make([]StateChangeListener, 0),
		logger:    logger,
	}
}

func (m *manager) Register(dep Dependency, cfg Config) {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}

	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = DefaultConfig().ResetTimeout
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, exists := m.records[dep]; exists {
		rec.cfg = cfg
		m.logger.Infof("Updated circuit breaker config for dependency: %s", dep)

		return
	}

	m.records[dep] = &record{cfg: cfg, state: StateClosed}
	m.logger.Infof("Registered circuit breaker for dependency: %s", dep)
}

func (m *manager) Execute(dep Dependency, fn func() (any, error), opts ...Option) (any, error) {
	m.mu.Lock()

	rec, exists := m.records[dep]
	if !exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s (call Register first)", ErrNotRegistered, dep)
	}

	cfg := rec.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	switch rec.state {
	case StateOpen:
		if time.Since(rec.lastFailure) > cfg.ResetTimeout {
			m.transitionLocked(dep, rec, StateHalfOpen)
			rec.probing = true
		} else {
			m.mu.Unlock()
			m.logger.Warnf("Circuit breaker [%s] is OPEN - request rejected immediately", dep)

			return nil, fmt.Errorf("dependency %s is currently unavailable: %w", dep, ErrCircuitOpen)
		}
	case StateHalfOpen:
		// Only one probe at a time while half-open.
		if rec.probing {
			m.mu.Unlock()
			m.logger.Warnf("Circuit breaker [%s] is HALF-OPEN - probe already in flight", dep)

			return nil, fmt.Errorf("dependency %s is recovering: %w", dep, ErrCircuitOpen)
		}

		rec.probing = true
	case StateClosed, StateUnknown:
	}

	wasHalfOpen := rec.state == StateHalfOpen
	m.mu.Unlock()

	result, err := fn()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		rec.failures++
		rec.lastFailure = time.Now()

		if wasHalfOpen {
			rec.probing = false
			m.transitionLocked(dep, rec, StateOpen)
		} else if rec.state == StateClosed && rec.failures >= cfg.FailureThreshold {
			m.transitionLocked(dep, rec, StateOpen)
		}

		return nil, err
	}

	rec.successes++

	if wasHalfOpen {
		rec.probing = false
		rec.failures = 0
		m.transitionLocked(dep, rec, StateClosed)
	}

	return result, nil
}

func (m *manager) IsAvailable(dep Dependency) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[dep]
	if !exists {
		return true
	}

	return rec.state != StateOpen
}

func (m *manager) Stats(dep Dependency) Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[dep]
	if !exists {
		return Stats{Name: dep, State: StateUnknown}
	}

	return snapshotLocked(dep, rec)
}

func (m *manager) AllStats() map[Dependency]Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make(map[Dependency]Stats, len(m.records))
	for dep, rec := range m.records {
		all[dep] = snapshotLocked(dep, rec)
	}

	return all
}

func (m *manager) Reset(dep Dependency) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[dep]
	if !exists {
		m.logger.Warnf("Reset requested for unknown dependency: %s", dep)
		return
	}

	m.logger.Infof("Resetting circuit breaker for dependency: %s", dep)

	rec.failures = 0
	rec.successes = 0
	rec.lastFailure = time.Time{}
	rec.probing = false

	if rec.state != StateClosed {
		m.transitionLocked(dep, rec, StateClosed)
	}
}

func (m *manager) RegisterStateChangeListener(listener StateChangeListener) {
	if listener == nil {
		m.logger.Warnf("Attempted to register a nil state change listener")

		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listeners = append(m.listeners, listener)
	m.logger.Debugf("Registered state change listener (total: %d)", len(m.listeners))
}

func snapshotLocked(dep Dependency, rec *record) Stats {
	stats := Stats{
		Name:      dep,
		State:     rec.state,
		Failures:  rec.failures,
		Successes: rec.successes,
	}

	if !rec.lastFailure.IsZero() {
		lastFailure := rec.lastFailure
		stats.LastFailure = &lastFailure
	}

	return stats
}

// transitionLocked changes a circuit's state, logs the transition, and
// notifies listeners. Callers must hold the manager mutex; listeners are
// invoked on goroutines so a slow listener cannot block breaker operations.
func (m *manager) transitionLocked(dep Dependency, rec *record, to State) {
	from := rec.state
	if from == to {
		return
	}

	rec.state = to

	switch to {
	case StateOpen:
		m.logger.Errorf("Circuit breaker [%s] OPENED - dependency is unhealthy, requests will fast-fail", dep)
	case StateHalfOpen:
		m.logger.Infof("Circuit breaker [%s] HALF-OPEN - testing dependency recovery", dep)
	case StateClosed:
		m.logger.Infof("Circuit breaker [%s] CLOSED - dependency is healthy", dep)
	case StateUnknown:
	}

	for _, listener := range m.listeners {
		go func(l StateChangeListener) {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Errorf("State change listener panic for dependency %s: %v", dep, r)
				}
			}()

			l.OnStateChange(dep, from, to)
		}(listener)
	}
}
