package manager

import (
	"time"

	"braind/internal/backend"
	"braind/internal/config"
)

// Scoring weights for victim selection. Higher score = better victim.
// Recency contributes one point per idle second; recent frequency buys a
// backend score headroom; heavyweight backends carry a constant penalty so
// they go first when scores are close.
const (
	recencyWeight   = 1.0
	frequencyWeight = 30.0
	heavyWeight     = 120.0
)

// victimScore scores h for eviction at now. With adaptive loading disabled
// the score degenerates to idle age, i.e. plain LRU.
func victimScore(h *handle, now time.Time, adaptive bool) float64 {
	age := now.Sub(h.lastUsed).Seconds()
	if !adaptive {
		return age
	}
	score := recencyWeight*age - frequencyWeight*h.decayedUseAt(now)
	if !h.spec.MemoryEfficient {
		score += heavyWeight
	}
	return score
}

// selectVictimLocked picks the highest-scored evictable handle: Ready, no
// in-flight acquisitions, never the main brain. Ties go to the oldest
// lastUsed. Returns nil when nothing is evictable.
func (m *Manager) selectVictimLocked(now time.Time, st config.Settings) *handle {
	var victim *handle
	var best float64
	for id, h := range m.handles {
		if id == m.reg.MainID() || h.state != StateReady || h.active > 0 {
			continue
		}
		s := victimScore(h, now, st.AdaptiveLoading)
		if victim == nil || s > best || (s == best && h.lastUsed.Before(victim.lastUsed)) {
			victim = h
			best = s
		}
	}
	return victim
}

// removeLocked transitions h to Unloading, removes it from the handle map,
// and returns the backend for the out-of-lock unload call.
func (m *Manager) removeLocked(h *handle) backend.Backend {
	h.state = StateUnloading
	delete(m.handles, h.spec.ID)
	m.usedMB -= h.estMemMB
	if m.usedMB < 0 {
		m.usedMB = 0
	}
	return h.be
}

// finishEviction unloads the removed backend outside the lock and completes
// the state machine.
func (m *Manager) finishEviction(h *handle, be backend.Backend, reason string) {
	if be != nil {
		if err := be.Unload(); err != nil {
			m.log.Warn().Str("backend", h.spec.ID).Err(err).Msg("unload")
		}
	}
	m.mu.Lock()
	h.state = StateUnloaded
	m.mu.Unlock()
	m.log.Info().Str("backend", h.spec.ID).Str("reason", reason).Msg("evicted")
	m.pub.Publish(Event{Name: EventEvicted, BackendID: h.spec.ID, Fields: map[string]any{"reason": reason}})
}

// GCTick runs the memory-threshold sweep: while aggregate usage exceeds the
// configured fraction of the budget, evict victims in non-increasing score
// order. A nil victim ends the sweep (only pinned or active handles left).
// Disabled entirely when auto_unload is off or no budget is set.
func (m *Manager) GCTick() {
	st := m.settings.Current()
	if !st.AutoUnload || m.budgetMB <= 0 {
		return
	}
	threshold := int(st.MemoryThreshold * float64(m.budgetMB))
	for {
		m.mu.Lock()
		if m.usedMB <= threshold {
			m.mu.Unlock()
			return
		}
		v := m.selectVictimLocked(time.Now(), st)
		if v == nil {
			used := m.usedMB
			m.mu.Unlock()
			m.log.Warn().Int("used_mb", used).Int("threshold_mb", threshold).
				Msg("over memory threshold with nothing evictable")
			m.pub.Publish(Event{Name: EventBudgetExceeded, Fields: map[string]any{
				"used_mb":      used,
				"threshold_mb": threshold,
			}})
			return
		}
		be := m.removeLocked(v)
		m.mu.Unlock()
		m.finishEviction(v, be, "memory")
	}
}
