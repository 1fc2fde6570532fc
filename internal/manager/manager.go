package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/registry"
	"braind/pkg/types"
)

// Manager loads, caches, and evicts backend handles. One exists per process.
type Manager struct {
	log      zerolog.Logger
	reg      *registry.Registry
	factory  backend.Factory
	settings *config.Store
	pub      EventPublisher
	budgetMB int

	mu      sync.Mutex
	handles map[string]*handle
	usedMB  int
	// failures records the last invocation/load failure per backend id so
	// routing can apply its cool-down even after a handle is gone.
	failures map[string]time.Time

	loadsTotal atomic.Int64
	closed     bool
}

// MainID returns the id of the pinned main brain backend.
func (m *Manager) MainID() string { return m.reg.MainID() }

// UsedMB returns the current aggregate estimated memory usage.
func (m *Manager) UsedMB() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedMB
}

// BudgetMB returns the configured memory budget (0 = unlimited).
func (m *Manager) BudgetMB() int { return m.budgetMB }

// LoadsTotal returns the number of backend loads completed since start.
func (m *Manager) LoadsTotal() int64 { return m.loadsTotal.Load() }

// ReadyCount returns the number of Ready handles, main brain excluded.
func (m *Manager) ReadyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, h := range m.handles {
		if h.state == StateReady && id != m.reg.MainID() {
			n++
		}
	}
	return n
}

// MainReady reports whether the main brain is resident.
func (m *Manager) MainReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.handles[m.reg.MainID()]
	return h != nil && h.state == StateReady
}

// Status returns per-handle details for the status endpoint.
func (m *Manager) Status() []types.BackendStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.BackendStatus, 0, len(m.handles))
	for id, h := range m.handles {
		out = append(out, types.BackendStatus{
			BackendID:   id,
			Capability:  h.spec.Capability,
			State:       string(h.state),
			LastUsed:    h.lastUsed.Unix(),
			UseCount:    h.useCount,
			Active:      h.active,
			EstMemoryMB: h.estMemMB,
			Main:        id == m.reg.MainID(),
		})
	}
	return out
}

// Run periodically invokes GCTick until ctx is done. Intended to be started
// as a goroutine from main.
func (m *Manager) Run(stop <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.GCTick()
		case <-stop:
			return
		}
	}
}

// Close tears down all handles, best effort. The manager must not be used
// afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	var victims []*handle
	for id, h := range m.handles {
		if h.state == StateReady {
			h.state = StateUnloading
			victims = append(victims, h)
		}
		delete(m.handles, id)
	}
	m.usedMB = 0
	m.mu.Unlock()
	for _, h := range victims {
		if h.be != nil {
			if err := h.be.Unload(); err != nil {
				m.log.Warn().Str("backend", h.spec.ID).Err(err).Msg("unload on close")
			}
		}
		m.mu.Lock()
		h.state = StateUnloaded
		m.mu.Unlock()
	}
}
