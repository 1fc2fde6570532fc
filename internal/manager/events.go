package manager

// Event represents a lifecycle event. Minimal and stable: name + backend id
// and optional fields via key/values.
type Event struct {
	Name      string
	BackendID string
	Fields    map[string]any
}

// Event names published by the manager and orchestrator.
const (
	EventLoadStart      = "load_start"
	EventLoadReady      = "load_ready"
	EventLoadFailed     = "load_failed"
	EventEvicted        = "evicted"
	EventBudgetExceeded = "budget_exceeded"
	EventInvokeFailed   = "invoke_failed"
	EventFallback       = "fallback"
	EventClassified     = "classified"
	EventRouted         = "routed"
)

// EventPublisher receives events. Implementations must be lightweight and
// non-blocking; Publish must not panic and never blocks the request path.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
