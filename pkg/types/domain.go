package types

// BackendSpec declares one backend in the catalog. Specs are loaded once at
// startup and are immutable afterwards.
type BackendSpec struct {
	// Stable identifier for the backend.
	// example: blip-large
	ID string `json:"id" yaml:"id" toml:"id" example:"blip-large"`
	// Capability this backend serves.
	// example: vision
	Capability Capability `json:"capability" yaml:"capability" toml:"capability" example:"vision"`
	// Precedence among backends serving the same capability; 1 is highest.
	// example: 1
	Priority int `json:"priority" yaml:"priority" toml:"priority" example:"1"`
	// Small backends are preferred residents when eviction scores are close.
	// example: false
	MemoryEfficient bool `json:"memory_efficient" yaml:"memory_efficient" toml:"memory_efficient" example:"false"`
	// Disabled backends are invisible to routing.
	// example: true
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled" example:"true"`
	// Advisory load duration in milliseconds, used to derive the load timeout.
	// example: 1500
	LoadCostHintMS int `json:"load_cost_hint_ms,omitempty" yaml:"load_cost_hint_ms" toml:"load_cost_hint_ms" example:"1500"`
	// Declared memory footprint estimate in MB. The loaded backend may
	// refine this after load.
	// example: 2048
	EstMemoryMB int `json:"est_memory_mb,omitempty" yaml:"est_memory_mb" toml:"est_memory_mb" example:"2048"`
}
