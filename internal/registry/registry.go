// Package registry holds the declarative backend catalog. The catalog is
// validated and frozen at construction; malformed entries surface here, at
// startup, never lazily mid-request.
package registry

import (
	"sort"

	"braind/pkg/types"
)

// Registry is the immutable backend catalog.
type Registry struct {
	specs []types.BackendSpec
	byID  map[string]int
	main  string
}

// New validates the catalog and freezes it. mainID names the always-resident
// main brain; it must refer to an enabled text backend.
func New(specs []types.BackendSpec, mainID string) (*Registry, error) {
	r := &Registry{
		specs: append([]types.BackendSpec(nil), specs...),
		byID:  make(map[string]int, len(specs)),
		main:  mainID,
	}
	for i, s := range r.specs {
		if s.ID == "" {
			return nil, errConfig("backend entry %d: missing id", i)
		}
		if s.Capability == "" {
			return nil, errConfig("backend %q: missing capability", s.ID)
		}
		if !s.Capability.Valid() {
			return nil, errConfig("backend %q: unknown capability %q", s.ID, s.Capability)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, errConfig("duplicate backend id %q", s.ID)
		}
		if s.Priority < 0 {
			return nil, errConfig("backend %q: negative priority", s.ID)
		}
		r.byID[s.ID] = i
	}
	if mainID == "" {
		return nil, errConfig("main backend id is required")
	}
	mi, ok := r.byID[mainID]
	if !ok {
		return nil, errConfig("main backend %q not in catalog", mainID)
	}
	if main := r.specs[mi]; !main.Enabled {
		return nil, errConfig("main backend %q is disabled", mainID)
	} else if main.Capability != types.CapabilityText {
		return nil, errConfig("main backend %q must serve text, serves %q", mainID, main.Capability)
	}
	return r, nil
}

// Get returns the spec for id.
func (r *Registry) Get(id string) (types.BackendSpec, bool) {
	i, ok := r.byID[id]
	if !ok {
		return types.BackendSpec{}, false
	}
	return r.specs[i], true
}

// Lookup returns the enabled specs serving cap, highest precedence first.
// Lowest priority value wins; ties keep catalog insertion order.
func (r *Registry) Lookup(cap types.Capability) []types.BackendSpec {
	var out []types.BackendSpec
	for _, s := range r.specs {
		if s.Enabled && s.Capability == cap {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// MainID returns the id of the pinned main brain backend.
func (r *Registry) MainID() string { return r.main }

// Main returns the main brain spec.
func (r *Registry) Main() types.BackendSpec {
	s, _ := r.Get(r.main)
	return s
}

// All returns a copy of the full catalog in insertion order.
func (r *Registry) All() []types.BackendSpec {
	out := make([]types.BackendSpec, len(r.specs))
	copy(out, r.specs)
	return out
}
