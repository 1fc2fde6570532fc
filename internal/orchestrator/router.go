package orchestrator

import (
	"braind/internal/config"
	"braind/internal/manager"
	"braind/internal/registry"
	"braind/pkg/types"
)

// DecisionKind enumerates routing outcomes.
type DecisionKind string

const (
	DecideSpecialized DecisionKind = "specialized"
	DecideMain        DecisionKind = "main"
	DecideReject      DecisionKind = "reject"
)

// Decision is the result of routing one classified request.
type Decision struct {
	Kind      DecisionKind
	BackendID string
	Reason    string
}

// Router decides whether a classified request goes to a specialized
// backend, the main brain, or nowhere.
type Router struct {
	reg      *registry.Registry
	mgr      *manager.Manager
	settings *config.Store
}

// NewRouter builds a Router over the catalog and lifecycle manager.
func NewRouter(reg *registry.Registry, mgr *manager.Manager, settings *config.Store) *Router {
	return &Router{reg: reg, mgr: mgr, settings: settings}
}

// Route picks the delivery path for (capability, confidence). A specialist
// is chosen when confidence clears the delegation threshold and the catalog
// has an enabled, non-failed candidate; candidates inside the failure
// cool-down window are skipped. Everything else falls back to the main
// brain, and Reject is returned only when the main brain itself is down.
func (r *Router) Route(cap types.Capability, confidence float64) Decision {
	st := r.settings.Current()

	reason := "confidence below threshold"
	if confidence >= st.DelegationConfidence {
		for _, s := range r.reg.Lookup(cap) {
			if s.ID == r.reg.MainID() {
				continue
			}
			if r.mgr.BackendDown(s.ID, st.FailureCoolDown) {
				continue
			}
			return Decision{Kind: DecideSpecialized, BackendID: s.ID}
		}
		reason = "no specialized backend available"
	}

	// Main brain availability: only a Failed handle counts as down; the
	// cool-down never removes the last resort.
	if !r.mgr.BackendDown(r.reg.MainID(), 0) {
		return Decision{Kind: DecideMain, BackendID: r.reg.MainID(), Reason: reason}
	}
	return Decision{Kind: DecideReject, Reason: "main backend unavailable"}
}
