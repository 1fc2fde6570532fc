package types

// ChatRequest is the payload accepted by POST /chat.
type ChatRequest struct {
	// Required user message to process.
	// example: What is in this picture?
	Message string `json:"message" example:"What is in this picture?"`
	// Optional session identifier for usage tracking. Defaults to "default".
	// example: alice
	SessionID string `json:"session_id,omitempty" example:"alice"`
	// Optional capability override. When set, classification is skipped.
	// example: vision
	Capability string `json:"capability,omitempty" example:"vision"`
	// If true, stream the response as NDJSON chunks.
	// example: false
	Stream bool `json:"stream,omitempty" example:"false"`
}

// ChatResponse is the result of one orchestrated request.
type ChatResponse struct {
	// Generated response content.
	Response string `json:"response"`
	// Backend that produced the response.
	// example: deepseek-r1
	Backend string `json:"backend" example:"deepseek-r1"`
	// Capability the request was classified as.
	// example: vision
	Capability Capability `json:"capability" example:"vision"`
	// Classifier confidence in [0,1]; 1.0 for explicit overrides.
	// example: 0.92
	Confidence float64 `json:"confidence" example:"0.92"`
	// True when the response came from the main brain after a specialized
	// backend failed.
	FallbackUsed bool `json:"fallback_used,omitempty"`
	// Wall time spent handling the request, in milliseconds.
	// example: 42
	DurationMS int64 `json:"duration_ms" example:"42"`
}

// BackendsResponse wraps the catalog returned by GET /backends.
type BackendsResponse struct {
	Backends []BackendSpec `json:"backends"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// Error taxonomy kind when the failure is a structured orchestrator
	// result (classifier_unavailable, load_failure, invocation_failure,
	// rejected).
	// example: load_failure
	Kind string `json:"kind,omitempty" example:"load_failure"`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

// BackendStatus summarizes one known backend handle for /status.
type BackendStatus struct {
	// ID of the backend this handle tracks.
	// example: whisper-base
	BackendID string `json:"backend_id" example:"whisper-base"`
	// Capability served.
	// example: speech_input
	Capability Capability `json:"capability" example:"speech_input"`
	// Lifecycle state (unloaded, loading, ready, failed, unloading).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this backend served a request (unix seconds).
	LastUsed int64 `json:"last_used"`
	// Lifetime number of acquisitions.
	UseCount int64 `json:"use_count"`
	// Acquisitions currently in flight.
	Active int `json:"active"`
	// Estimated memory footprint in MB.
	EstMemoryMB int `json:"est_memory_mb"`
	// True for the pinned main brain.
	Main bool `json:"main,omitempty"`
}

// SessionStatus summarizes one tracked session for /status.
type SessionStatus struct {
	// Session identifier.
	// example: alice
	SessionID string `json:"session_id" example:"alice"`
	// Requests observed for this session.
	Requests int64 `json:"requests"`
	// Last request time (unix seconds).
	LastSeen int64 `json:"last_seen"`
}

// StatusResponse is the admin view returned by GET /status.
type StatusResponse struct {
	// Overall state: ready once the main brain is resident.
	// example: ready
	State string `json:"state" example:"ready"`
	// Seconds since process start.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Configured memory budget in MB (0 = unlimited).
	BudgetMB int `json:"budget_mb"`
	// Current aggregate estimated usage in MB.
	UsedMB int `json:"used_mb"`
	// Fraction of the budget that triggers the eviction sweep.
	MemoryThreshold float64 `json:"memory_threshold"`
	// Requests handled since start.
	RequestsProcessed int64 `json:"requests_processed"`
	// Requests currently in flight.
	ActiveRequests int64 `json:"active_requests"`
	// Failed requests since start.
	ErrorsCount int64 `json:"errors_count"`
	// Backend loads completed since start.
	BackendsLoadedTotal int64 `json:"backends_loaded_total"`
	// Per-backend handle details.
	Backends []BackendStatus `json:"backends"`
	// Per-session usage details.
	Sessions []SessionStatus `json:"sessions,omitempty"`
	// Last startup or lifecycle error, if any.
	Error string `json:"error,omitempty"`
}
