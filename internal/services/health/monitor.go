package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const checkTimeout = 4 * time.Second

type Dependency interface {
	GetName() string
	CheckHealth(ctx context.Context) error
}

type probe struct {
	name string
	fn   func(ctx context.Context) error
}

func (p probe) GetName() string                       { return p.name }
func (p probe) CheckHealth(ctx context.Context) error { return p.fn(ctx) }

// Probe adapts a ping function into a Dependency.
func Probe(name string, fn func(ctx context.Context) error) Dependency {
	return probe{name: name, fn: fn}
}

type Status struct {
	Healthy   bool
	Error     string
	CheckedAt time.Time
}

type Monitor struct {
	dependencies []Dependency
	interval     time.Duration
	logger       zerolog.Logger

	mutex     sync.RWMutex
	cache     map[string]Status
	listeners []func(name string, healthy bool)

	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewMonitor(logger zerolog.Logger, interval time.Duration, dependencies ...Dependency) *Monitor {
	return &Monitor{
		dependencies: dependencies,
		interval:     interval,
		logger:       logger.With().Str("component", "health").Logger(),
		cache:        make(map[string]Status),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// OnChange registers fn to be called after every check. Register before Start.
func (m *Monitor) OnChange(fn func(name string, healthy bool)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Monitor) GetStatus(name string) (Status, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	status, found := m.cache[name]
	return status, found
}

func (m *Monitor) Snapshot() map[string]Status {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	out := make(map[string]Status, len(m.cache))
	for name, status := range m.cache {
		out[name] = status
	}
	return out
}

// Healthy reports whether every dependency passed its last check. Dependencies
// that were never checked count as unhealthy.
func (m *Monitor) Healthy() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	for _, d := range m.dependencies {
		status, found := m.cache[d.GetName()]
		if !found || !status.Healthy {
			return false
		}
	}
	return true
}

func (m *Monitor) Start() {
	m.logger.Info().Dur("interval", m.interval).Msg("starting health monitor")
	ticker := time.NewTicker(m.interval)
	go func() {
		defer close(m.done)
		defer ticker.Stop()
		m.CheckAll()
		for {
			select {
			case <-ticker.C:
				m.CheckAll()
			case <-m.stopChan:
				m.logger.Info().Msg("health monitor stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit. Safe to call more than once,
// but only after Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	<-m.done
}

func (m *Monitor) CheckAll() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	for _, d := range m.dependencies {
		err := d.CheckHealth(ctx)
		status := Status{Healthy: err == nil, CheckedAt: time.Now()}
		if err != nil {
			status.Error = err.Error()
			m.logger.Warn().Err(err).Str("dependency", d.GetName()).Msg("health check failed")
		}
		m.updateStatus(d.GetName(), status)
	}
}

func (m *Monitor) updateStatus(name string, status Status) {
	m.mutex.Lock()
	previous, found := m.cache[name]
	m.cache[name] = status
	listeners := append([]func(string, bool){}, m.listeners...)
	m.mutex.Unlock()

	if !found || previous.Healthy != status.Healthy {
		m.logger.Info().Str("dependency", name).Bool("healthy", status.Healthy).Msg("dependency status changed")
	}
	for _, fn := range listeners {
		fn(name, status.Healthy)
	}
}
