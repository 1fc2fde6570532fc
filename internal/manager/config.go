package manager

import (
	"time"

	"github.com/rs/zerolog"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/registry"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry *registry.Registry
	Factory  backend.Factory
	Settings *config.Store
	// BudgetMB is the aggregate memory budget for loaded backends in MB.
	// Zero disables the memory-threshold sweep (capacity limits still hold).
	BudgetMB  int
	Logger    zerolog.Logger
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		reg:      cfg.Registry,
		factory:  cfg.Factory,
		settings: cfg.Settings,
		budgetMB: cfg.BudgetMB,
		log:      cfg.Logger,
		pub:      cfg.Publisher,
		handles:  make(map[string]*handle),
		failures: make(map[string]time.Time),
	}
	if m.pub == nil {
		m.pub = noopPublisher{}
	}
	if m.factory == nil {
		m.factory = backend.SimulatedFactory
	}
	return m
}
