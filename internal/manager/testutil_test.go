package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/registry"
	"braind/pkg/types"
)

// fakeBackend is a scriptable backend for lifecycle tests.
type fakeBackend struct {
	spec      types.BackendSpec
	loadDelay time.Duration
	// failLoads makes the first N Load calls fail.
	failLoads *atomic.Int32
	invokeErr error
	reply     string

	loads   atomic.Int32
	unloads atomic.Int32
}

func (f *fakeBackend) Load(ctx context.Context) error {
	f.loads.Add(1)
	if f.loadDelay > 0 {
		select {
		case <-time.After(f.loadDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.failLoads != nil && f.failLoads.Add(-1) >= 0 {
		return errors.New("simulated load failure")
	}
	return nil
}

func (f *fakeBackend) Invoke(ctx context.Context, in backend.Input) (backend.Output, error) {
	if f.invokeErr != nil {
		return backend.Output{}, f.invokeErr
	}
	reply := f.reply
	if reply == "" {
		reply = "ok: " + in.Message
	}
	return backend.Output{Content: reply}, nil
}

func (f *fakeBackend) Unload() error {
	f.unloads.Add(1)
	return nil
}

func (f *fakeBackend) EstimatedMemoryMB() int { return f.spec.EstMemoryMB }

// fakeFleet hands out fakeBackend instances by id and remembers them.
type fakeFleet struct {
	mu       sync.Mutex
	backends map[string]*fakeBackend
	// prepare hooks behaviors onto a backend before its first use.
	prepare map[string]func(*fakeBackend)
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{
		backends: make(map[string]*fakeBackend),
		prepare:  make(map[string]func(*fakeBackend)),
	}
}

func (fl *fakeFleet) factory(spec types.BackendSpec) (backend.Backend, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	f, ok := fl.backends[spec.ID]
	if !ok {
		f = &fakeBackend{spec: spec}
		if p := fl.prepare[spec.ID]; p != nil {
			p(f)
		}
		fl.backends[spec.ID] = f
	}
	return f, nil
}

func (fl *fakeFleet) get(id string) *fakeBackend {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.backends[id]
}

// testCatalog is a small fixed catalog: a main text brain plus three
// specialists of varying weight.
func testCatalog() []types.BackendSpec {
	return []types.BackendSpec{
		{ID: "brain", Capability: types.CapabilityText, Priority: 1, Enabled: true, EstMemoryMB: 40},
		{ID: "vision", Capability: types.CapabilityVision, Priority: 1, Enabled: true, EstMemoryMB: 30},
		{ID: "speech", Capability: types.CapabilitySpeechInput, Priority: 1, Enabled: true, MemoryEfficient: true, EstMemoryMB: 10},
		{ID: "docs", Capability: types.CapabilityDocument, Priority: 1, Enabled: true, EstMemoryMB: 30},
	}
}

func testSettings() config.Settings {
	return config.Settings{
		AutoLoad:             true,
		AutoUnload:           true,
		MaxConcurrentModels:  3,
		MemoryThreshold:      0.8,
		DelegationConfidence: 0.7,
		FallbackToMain:       true,
		AdaptiveLoading:      true,
		DynamicConfigUpdates: true,
		FailureCoolDown:      time.Minute,
		LoadTimeout:          5 * time.Second,
		InvokeTimeout:        5 * time.Second,
		MaxLoadAttempts:      1,
		RetryBackoff:         time.Millisecond,
	}
}

type testEnv struct {
	mgr   *Manager
	fleet *fakeFleet
	store *config.Store
	pub   *MemoryPublisher
}

func newTestEnv(t interface{ Fatalf(string, ...any) }, budgetMB int, mut func(*config.Settings)) *testEnv {
	reg, err := registry.New(testCatalog(), "brain")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s := testSettings()
	if mut != nil {
		mut(&s)
	}
	store, err := config.NewStore(s)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	fleet := newFakeFleet()
	pub := NewMemoryPublisher()
	mgr := NewWithConfig(ManagerConfig{
		Registry:  reg,
		Factory:   fleet.factory,
		Settings:  store,
		BudgetMB:  budgetMB,
		Logger:    zerolog.Nop(),
		Publisher: pub,
	})
	return &testEnv{mgr: mgr, fleet: fleet, store: store, pub: pub}
}

// mustAcquire acquires id or fails the test.
func (e *testEnv) mustAcquire(t interface{ Fatalf(string, ...any) }, id string) *Lease {
	l, err := e.mgr.Acquire(context.Background(), id)
	if err != nil {
		t.Fatalf("acquire %s: %v", id, err)
	}
	return l
}
