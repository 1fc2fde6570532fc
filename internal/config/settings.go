package config

import (
	"fmt"
	"time"
)

// Defaults applied when corresponding Settings fields are unset.
const (
	DefaultMaxConcurrentModels  = 3
	DefaultMemoryThreshold      = 0.8
	DefaultDelegationConfidence = 0.7
	DefaultFailureCoolDown      = 30 * time.Second
	DefaultLoadTimeout          = 30 * time.Second
	DefaultInvokeTimeout        = 60 * time.Second
	DefaultMaxLoadAttempts      = 3
	DefaultRetryBackoff         = 200 * time.Millisecond
)

// Settings is the orchestration tuning surface. A Settings value is
// immutable once installed in a Store; runtime updates install a fresh
// snapshot so in-flight requests keep a consistent view.
type Settings struct {
	// Load backends on demand when a request needs them.
	AutoLoad bool `json:"auto_load" yaml:"auto_load" toml:"auto_load"`
	// Allow idle/memory-pressure eviction sweeps. Capacity-forced eviction
	// during acquire happens regardless.
	AutoUnload bool `json:"auto_unload" yaml:"auto_unload" toml:"auto_unload"`
	// Upper bound on concurrently ready backends, main brain excluded.
	MaxConcurrentModels int `json:"max_concurrent_models" yaml:"max_concurrent_models" toml:"max_concurrent_models"`
	// Fraction of the memory budget above which the sweep evicts.
	MemoryThreshold float64 `json:"memory_threshold" yaml:"memory_threshold" toml:"memory_threshold"`
	// Minimum classification confidence to delegate to a specialist.
	DelegationConfidence float64 `json:"delegation_confidence" yaml:"delegation_confidence" toml:"delegation_confidence"`
	// Retry a failed specialized invocation once against the main brain.
	FallbackToMain bool `json:"fallback_to_main" yaml:"fallback_to_main" toml:"fallback_to_main"`
	// Score eviction victims by recency+frequency+weight; plain LRU when off.
	AdaptiveLoading bool `json:"adaptive_loading" yaml:"adaptive_loading" toml:"adaptive_loading"`
	// Accept UpdateSettings calls at runtime.
	DynamicConfigUpdates bool `json:"dynamic_config_updates" yaml:"dynamic_config_updates" toml:"dynamic_config_updates"`
	// Window during which a backend with a recent failure is skipped by
	// routing.
	FailureCoolDown time.Duration `json:"failure_cool_down" yaml:"failure_cool_down" toml:"failure_cool_down"`
	// Absolute ceiling for one backend load attempt.
	LoadTimeout time.Duration `json:"load_timeout" yaml:"load_timeout" toml:"load_timeout"`
	// Ceiling for one backend invocation.
	InvokeTimeout time.Duration `json:"invoke_timeout" yaml:"invoke_timeout" toml:"invoke_timeout"`
	// Bounded load attempts before a LoadFailure is surfaced.
	MaxLoadAttempts int `json:"max_load_attempts" yaml:"max_load_attempts" toml:"max_load_attempts"`
	// Initial backoff between load attempts; doubles each retry.
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff" toml:"retry_backoff"`
}

// DefaultSettings returns the settings used when the config file omits the
// orchestrator block.
func DefaultSettings() Settings {
	return Settings{
		AutoLoad:             true,
		AutoUnload:           true,
		MaxConcurrentModels:  DefaultMaxConcurrentModels,
		MemoryThreshold:      DefaultMemoryThreshold,
		DelegationConfidence: DefaultDelegationConfidence,
		FallbackToMain:       true,
		AdaptiveLoading:      true,
		FailureCoolDown:      DefaultFailureCoolDown,
		LoadTimeout:          DefaultLoadTimeout,
		InvokeTimeout:        DefaultInvokeTimeout,
		MaxLoadAttempts:      DefaultMaxLoadAttempts,
		RetryBackoff:         DefaultRetryBackoff,
	}
}

// withDefaults fills unset numeric fields.
func (s Settings) withDefaults() Settings {
	if s.MaxConcurrentModels <= 0 {
		s.MaxConcurrentModels = DefaultMaxConcurrentModels
	}
	if s.MemoryThreshold <= 0 {
		s.MemoryThreshold = DefaultMemoryThreshold
	}
	if s.DelegationConfidence <= 0 {
		s.DelegationConfidence = DefaultDelegationConfidence
	}
	if s.FailureCoolDown <= 0 {
		s.FailureCoolDown = DefaultFailureCoolDown
	}
	if s.LoadTimeout <= 0 {
		s.LoadTimeout = DefaultLoadTimeout
	}
	if s.InvokeTimeout <= 0 {
		s.InvokeTimeout = DefaultInvokeTimeout
	}
	if s.MaxLoadAttempts <= 0 {
		s.MaxLoadAttempts = DefaultMaxLoadAttempts
	}
	if s.RetryBackoff <= 0 {
		s.RetryBackoff = DefaultRetryBackoff
	}
	return s
}

// Validate rejects out-of-range values.
func (s Settings) Validate() error {
	if s.MaxConcurrentModels < 1 {
		return fmt.Errorf("max_concurrent_models must be >= 1, got %d", s.MaxConcurrentModels)
	}
	if s.MemoryThreshold <= 0 || s.MemoryThreshold > 1 {
		return fmt.Errorf("memory_threshold must be in (0,1], got %v", s.MemoryThreshold)
	}
	if s.DelegationConfidence < 0 || s.DelegationConfidence > 1 {
		return fmt.Errorf("delegation_confidence must be in [0,1], got %v", s.DelegationConfidence)
	}
	return nil
}
