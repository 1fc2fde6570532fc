package manager

import (
	"context"
	"time"

	"braind/internal/config"
	"braind/pkg/types"
)

// loadTimeout derives the per-attempt timeout from the spec's advisory load
// cost hint, capped by the configured ceiling.
func loadTimeout(spec types.BackendSpec, st config.Settings) time.Duration {
	ceiling := st.LoadTimeout
	if spec.LoadCostHintMS > 0 {
		hinted := 4 * time.Duration(spec.LoadCostHintMS) * time.Millisecond
		if hinted < ceiling {
			return hinted
		}
	}
	return ceiling
}

// runLoad performs the load for h with bounded retries and backoff, commits
// the Ready/Failed transition, and closes done. It runs detached from any
// request context: a load in flight is cache population and is never
// aborted by caller cancellation.
func (m *Manager) runLoad(h *handle, st config.Settings, done chan struct{}) {
	id := h.spec.ID
	start := time.Now()
	m.log.Debug().Str("backend", id).Msg("load start")
	m.pub.Publish(Event{Name: EventLoadStart, BackendID: id})

	be, err := m.factory(h.spec)
	if err == nil {
		backoff := st.RetryBackoff
		for attempt := 1; attempt <= st.MaxLoadAttempts; attempt++ {
			lctx, cancel := context.WithTimeout(context.Background(), loadTimeout(h.spec, st))
			err = be.Load(lctx)
			cancel()
			if err == nil {
				break
			}
			m.log.Warn().Str("backend", id).Int("attempt", attempt).Err(err).Msg("load attempt failed")
			if attempt < st.MaxLoadAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
	}

	m.mu.Lock()
	if err != nil {
		h.state = StateFailed
		h.loadErr = ErrLoadFailure(id, err)
		m.failures[id] = time.Now()
		close(done)
		m.mu.Unlock()
		m.log.Error().Str("backend", id).Err(err).Msg("load failed")
		m.pub.Publish(Event{Name: EventLoadFailed, BackendID: id, Fields: map[string]any{"error": err.Error()}})
		return
	}
	h.be = be
	h.state = StateReady
	h.estMemMB = be.EstimatedMemoryMB()
	if h.estMemMB <= 0 {
		h.estMemMB = 1
	}
	m.usedMB += h.estMemMB
	memMB := h.estMemMB
	h.lastUsed = time.Now()
	close(done)
	m.mu.Unlock()

	m.loadsTotal.Add(1)
	m.log.Info().Str("backend", id).Int("est_mem_mb", memMB).
		Dur("dur", time.Since(start)).Msg("load ready")
	m.pub.Publish(Event{Name: EventLoadReady, BackendID: id, Fields: map[string]any{
		"est_mem_mb": memMB,
		"dur_ms":     int(time.Since(start) / time.Millisecond),
	}})

	// Opportunistic sweep: a fresh load may push usage over the threshold.
	m.GCTick()
}
