package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

var (
	// ErrInvalidInterval indicates the check interval must be positive.
	ErrInvalidInterval = errors.New("health: check interval must be positive")
	// ErrInvalidProbeTimeout indicates the probe timeout must be positive.
	ErrInvalidProbeTimeout = errors.New("health: probe timeout must be positive")
)

// Status is the last-known health of one dependency.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ServiceHealth is the last-known health record for one dependency. Records
// are created as unknown at registration and mutated only by the monitor.
type ServiceHealth struct {
	Name         string        `json:"name"`
	Status       Status        `json:"status"`
	LastCheck    time.Time     `json:"last_check"`
	ResponseTime time.Duration `json:"response_time,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Probe is a lightweight representative call against one dependency.
type Probe func(ctx context.Context) error

type registration struct {
	probe    Probe
	critical bool
}

// Monitor periodically probes registered dependencies and keeps their
// ServiceHealth fresh.
type Monitor struct {
	breaker      circuitbreaker.Manager
	interval     time.Duration
	probeTimeout time.Duration
	logger       log.Logger

	mu       sync.RWMutex
	probes   map[circuitbreaker.Dependency]registration
	statuses map[circuitbreaker.Dependency]ServiceHealth

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMonitor creates a monitor that probes every registered dependency each
// interval, bounding each probe by probeTimeout.
func NewMonitor(breaker circuitbreaker.Manager, interval, probeTimeout time.Duration, logger log.Logger) (*Monitor, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	if probeTimeout <= 0 {
		return nil, ErrInvalidProbeTimeout
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Monitor{
		breaker:      breaker,
		interval:     interval,
		probeTimeout: probeTimeout,
		logger:       logger,
		probes:       make(map[circuitbreaker.Dependency]registration),
		statuses:     make(map[circuitbreaker.Dependency]ServiceHealth),
		stopChan:     make(chan struct{}),
	}, nil
}

// Register adds a dependency to the check rotation. Critical dependencies
// gate AreAllCriticalServicesHealthy; non-critical ones are tracked but do
// not block readiness. The dependency's probe circuit is registered with the
// tighter ProbeConfig.
func (m *Monitor) Register(dep circuitbreaker.Dependency, probe Probe, critical bool) {
	m.breaker.Register(dep.Probe(), circuitbreaker.ProbeConfig())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.probes[dep] = registration{probe: probe, critical: critical}
	m.statuses[dep] = ServiceHealth{Name: string(dep), Status: StatusUnknown}

	m.logger.Infof("Registered health probe for dependency: %s (critical=%v)", dep, critical)
}

// Start begins the check loop in a separate goroutine.
func (m *Monitor) Start() {
	m.wg.Add(1)

	go m.loop()

	m.logger.Infof("Health monitor started - probing dependencies every %v", m.interval)
}

// Stop gracefully stops the monitor.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	m.wg.Wait()
	m.logger.Info("Health monitor stopped")
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// First round runs immediately so readiness does not wait a full
	// interval after startup.
	m.checkAll()

	for {
		select {
		case <-ticker.C:
			m.checkAll()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkAll() {
	m.mu.RLock()

	probes := make(map[circuitbreaker.Dependency]registration, len(m.probes))
	for dep, reg := range m.probes {
		probes[dep] = reg
	}

	m.mu.RUnlock()

	for dep, reg := range probes {
		m.checkOne(dep, reg.probe)
	}
}

func (m *Monitor) checkOne(dep circuitbreaker.Dependency, probe Probe) {
	start := time.Now()

	_, err := m.breaker.Execute(dep.Probe(), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), m.probeTimeout)
		defer cancel()

		return nil, probe(ctx)
	})

	elapsed := time.Since(start)

	record := ServiceHealth{
		Name:         string(dep),
		Status:       StatusHealthy,
		LastCheck:    time.Now(),
		ResponseTime: elapsed,
	}

	if err != nil {
		record.Status = StatusUnhealthy
		record.Error = err.Error()

		m.logger.Warnf("Dependency %s unhealthy (%.0fms): %v", dep, float64(elapsed.Milliseconds()), err)
	} else {
		m.logger.Debugf("Dependency %s healthy (%.0fms)", dep, float64(elapsed.Milliseconds()))
	}

	m.mu.Lock()
	m.statuses[dep] = record
	m.mu.Unlock()
}

// AreAllCriticalServicesHealthy reports whether every dependency registered
// as critical is currently healthy. Non-critical dependencies never gate
// this predicate.
func (m *Monitor) AreAllCriticalServicesHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for dep, reg := range m.probes {
		if !reg.critical {
			continue
		}

		if m.statuses[dep].Status != StatusHealthy {
			return false
		}
	}

	return true
}

// HealthStatus returns a snapshot of every tracked dependency, keyed by
// dependency name.
func (m *Monitor) HealthStatus() map[string]ServiceHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]ServiceHealth, len(m.statuses))
	for dep, record := range m.statuses {
		snapshot[string(dep)] = record
	}

	return snapshot
}
