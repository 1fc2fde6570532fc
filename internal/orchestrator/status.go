package orchestrator

import (
	"time"

	"braind/pkg/types"
)

// Status builds the admin view for /status.
func (o *Orchestrator) Status() types.StatusResponse {
	st := o.settings.Current()
	state := "loading"
	if o.mgr.MainReady() {
		state = "ready"
	}
	return types.StatusResponse{
		State:               state,
		UptimeSeconds:       int64(time.Since(o.startTime).Seconds()),
		BudgetMB:            o.mgr.BudgetMB(),
		UsedMB:              o.mgr.UsedMB(),
		MemoryThreshold:     st.MemoryThreshold,
		RequestsProcessed:   o.counters.requests.Load(),
		ActiveRequests:      o.counters.active.Load(),
		ErrorsCount:         o.counters.errors.Load(),
		BackendsLoadedTotal: o.mgr.LoadsTotal(),
		Backends:            o.mgr.Status(),
		Sessions:            o.sessions.status(),
	}
}
