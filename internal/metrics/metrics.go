// Package metrics exports orchestration metrics to Prometheus. It plugs
// into the manager/orchestrator event stream as a fire-and-forget sink;
// recording never blocks the request path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"braind/internal/manager"
)

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "lifecycle",
			Name:      "loads_total",
			Help:      "Backend load attempts by outcome",
		},
		[]string{"backend", "outcome"},
	)

	evictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "lifecycle",
			Name:      "evictions_total",
			Help:      "Backend evictions by reason",
		},
		[]string{"backend", "reason"},
	)

	invokeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "orchestrator",
			Name:      "invoke_failures_total",
			Help:      "Backend invocation failures",
		},
		[]string{"backend"},
	)

	fallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "orchestrator",
			Name:      "fallbacks_total",
			Help:      "Requests re-routed to the main brain after a specialist failed",
		},
	)

	routedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "orchestrator",
			Name:      "routed_total",
			Help:      "Routing decisions by kind",
		},
		[]string{"decision"},
	)

	classifiedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "orchestrator",
			Name:      "classified_total",
			Help:      "Classifications by resulting capability",
		},
		[]string{"capability"},
	)

	budgetExceededTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "braind",
			Subsystem: "lifecycle",
			Name:      "budget_exceeded_total",
			Help:      "Sweeps that could not bring usage under the memory threshold",
		},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, evictionsTotal, invokeFailuresTotal,
		fallbacksTotal, routedTotal, classifiedTotal, budgetExceededTotal)
}

// Publisher translates lifecycle events into Prometheus counters. It
// implements manager.EventPublisher.
type Publisher struct{}

// NewPublisher returns the Prometheus-backed event sink.
func NewPublisher() *Publisher { return &Publisher{} }

func (*Publisher) Publish(e manager.Event) {
	switch e.Name {
	case manager.EventLoadReady:
		loadsTotal.WithLabelValues(e.BackendID, "ready").Inc()
	case manager.EventLoadFailed:
		loadsTotal.WithLabelValues(e.BackendID, "failed").Inc()
	case manager.EventEvicted:
		reason := "unspecified"
		if r, ok := e.Fields["reason"].(string); ok {
			reason = r
		}
		evictionsTotal.WithLabelValues(e.BackendID, reason).Inc()
	case manager.EventInvokeFailed:
		invokeFailuresTotal.WithLabelValues(e.BackendID).Inc()
	case manager.EventFallback:
		fallbacksTotal.Inc()
	case manager.EventRouted:
		if d, ok := e.Fields["decision"].(string); ok {
			routedTotal.WithLabelValues(d).Inc()
		}
	case manager.EventClassified:
		if c, ok := e.Fields["capability"].(string); ok {
			classifiedTotal.WithLabelValues(c).Inc()
		}
	case manager.EventBudgetExceeded:
		budgetExceededTotal.Inc()
	}
}
