package config

import (
	"fmt"
	"sync/atomic"
)

// versioned pairs a settings snapshot with a monotonically increasing
// version so observers can tell snapshots apart.
type versioned struct {
	settings Settings
	version  uint64
}

// Store holds the current Settings snapshot. Snapshots are immutable and
// swapped atomically; readers on the request path pay one atomic load.
type Store struct {
	cur     atomic.Pointer[versioned]
	version atomic.Uint64
}

// NewStore returns a Store seeded with s (after defaulting and validation).
func NewStore(s Settings) (*Store, error) {
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	st := &Store{}
	st.cur.Store(&versioned{settings: s, version: st.version.Add(1)})
	return st, nil
}

// Current returns the active settings snapshot.
func (st *Store) Current() Settings {
	return st.cur.Load().settings
}

// Version returns the version of the active snapshot.
func (st *Store) Version() uint64 {
	return st.cur.Load().version
}

// Update installs a new snapshot. It fails when the active snapshot has
// dynamic updates disabled or when s does not validate. Changes take effect
// on the next acquire/route/sweep cycle; in-flight requests keep the
// snapshot they started with.
func (st *Store) Update(s Settings) error {
	if !st.Current().DynamicConfigUpdates {
		return fmt.Errorf("dynamic configuration updates are disabled")
	}
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return err
	}
	st.cur.Store(&versioned{settings: s, version: st.version.Add(1)})
	return nil
}
