package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"braind/internal/backend"
)

// Lease is the opaque invocation token returned by Acquire. It pins the
// backend against eviction until Release. Release is idempotent.
type Lease struct {
	m    *Manager
	h    *handle
	once sync.Once
}

// ID returns the leased backend id.
func (l *Lease) ID() string { return l.h.spec.ID }

// Backend returns the loaded backend for invocation.
func (l *Lease) Backend() backend.Backend { return l.h.be }

// Release marks the acquisition complete. Safe to call more than once; only
// the first call decrements the active count.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.m.mu.Lock()
		if l.h.active > 0 {
			l.h.active--
		}
		l.h.lastUsed = time.Now()
		l.m.mu.Unlock()
	})
}

// Acquire returns a lease on a Ready handle for id, loading the backend if
// necessary. At most one load per backend id is in flight at any time;
// concurrent callers wait for it and observe the same outcome. Caller
// cancellation releases only the caller: a load already in flight completes
// for the benefit of other waiters.
func (m *Manager) Acquire(ctx context.Context, id string) (*Lease, error) {
	spec, ok := m.reg.Get(id)
	if !ok {
		return nil, ErrNotInCatalog(id)
	}
	if !spec.Enabled {
		return nil, ErrLoadFailure(id, errors.New("backend disabled"))
	}
	main := id == m.reg.MainID()

	for {
		m.mu.Lock()
		st := m.settings.Current()
		now := time.Now()
		h := m.handles[id]
		if h != nil {
			switch h.state {
			case StateReady:
				h.touch(now)
				h.active++
				m.mu.Unlock()
				return &Lease{m: m, h: h}, nil
			case StateLoading:
				done := h.loadDone
				m.mu.Unlock()
				select {
				case <-done:
					if err := m.loadOutcome(h, done); err != nil {
						return nil, err
					}
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			// Failed or stale Unloaded handle: fall through to a fresh load.
		}

		if !st.AutoLoad && !main {
			m.mu.Unlock()
			return nil, ErrLoadFailure(id, errors.New("auto_load disabled"))
		}

		// Capacity: Ready plus in-flight loads, main brain excluded. Evict
		// synchronously before admitting a new load.
		if !main && m.committedLocked() >= st.MaxConcurrentModels {
			v := m.selectVictimLocked(now, st)
			if v == nil {
				m.mu.Unlock()
				return nil, ErrBudgetExceeded(id)
			}
			be := m.removeLocked(v)
			m.mu.Unlock()
			m.finishEviction(v, be, "capacity")
			continue
		}

		if h == nil {
			h = newHandle(spec)
			m.handles[id] = h
		}
		h.state = StateLoading
		h.loadErr = nil
		done := make(chan struct{})
		h.loadDone = done
		m.mu.Unlock()

		go m.runLoad(h, st, done)

		select {
		case <-done:
			if err := m.loadOutcome(h, done); err != nil {
				return nil, err
			}
			continue
		case <-ctx.Done():
			// The load stays in flight for concurrent and future callers.
			return nil, ctx.Err()
		}
	}
}

// loadOutcome reports the error of the load that done belongs to, or nil if
// it succeeded (or the handle has since moved on).
func (m *Manager) loadOutcome(h *handle, done chan struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.state == StateFailed && h.loadDone == done {
		return h.loadErr
	}
	return nil
}

// committedLocked counts handles holding a capacity slot: Ready or Loading,
// main brain excluded.
func (m *Manager) committedLocked() int {
	n := 0
	for id, h := range m.handles {
		if id == m.reg.MainID() {
			continue
		}
		if h.state == StateReady || h.state == StateLoading {
			n++
		}
	}
	return n
}
