package orchestrator

import "sync/atomic"

// counters is the shared request accounting. All fields are monotonic
// except active. Updated exactly once per request.
type counters struct {
	requests atomic.Int64
	errors   atomic.Int64
	active   atomic.Int64
}

// RequestsProcessed returns the number of requests handled since start.
func (o *Orchestrator) RequestsProcessed() int64 { return o.counters.requests.Load() }

// ErrorsCount returns the number of failed requests since start.
func (o *Orchestrator) ErrorsCount() int64 { return o.counters.errors.Load() }

// ActiveRequests returns the number of requests currently in flight.
func (o *Orchestrator) ActiveRequests() int64 { return o.counters.active.Load() }
