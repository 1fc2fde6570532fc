package manager

import (
	"math"
	"time"

	"braind/internal/backend"
	"braind/pkg/types"
)

// State represents the lifecycle state of a backend handle.
type State string

const (
	StateUnloaded  State = "unloaded"
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateFailed    State = "failed"
	StateUnloading State = "unloading"
)

// frequencyHalfLife controls how fast the sliding-window use count decays.
const frequencyHalfLife = 5 * time.Minute

// handle is the runtime record for one backend id. Owned exclusively by the
// Manager; all fields are guarded by Manager.mu except be, which is safe to
// use outside the lock once the handle is Ready and leased.
type handle struct {
	spec     types.BackendSpec
	be       backend.Backend
	state    State
	lastUsed time.Time
	useCount int64
	// decayedUse is the sliding-window use frequency; decayedAt is the time
	// it was last folded.
	decayedUse float64
	decayedAt  time.Time
	// active counts in-flight acquisitions (Acquire/Release pairs). A handle
	// with active > 0 is never an eviction victim.
	active int
	// estMemMB is the footprint charged against the budget while Ready.
	estMemMB int
	// loadDone is closed when the current load attempt resolves; loadErr is
	// set before the close when it failed.
	loadDone chan struct{}
	loadErr  error
}

func newHandle(spec types.BackendSpec) *handle {
	now := time.Now()
	return &handle{
		spec:      spec,
		state:     StateUnloaded,
		lastUsed:  now,
		decayedAt: now,
	}
}

// touch records one use at now.
func (h *handle) touch(now time.Time) {
	h.useCount++
	h.decayedUse = h.decayedUseAt(now) + 1
	h.decayedAt = now
	h.lastUsed = now
}

// decayedUseAt folds the exponential decay forward to now without mutating.
func (h *handle) decayedUseAt(now time.Time) float64 {
	elapsed := now.Sub(h.decayedAt)
	if elapsed <= 0 || h.decayedUse == 0 {
		return h.decayedUse
	}
	return h.decayedUse * math.Exp2(-float64(elapsed)/float64(frequencyHalfLife))
}
