package orchestrator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/manager"
	"braind/internal/registry"
	"braind/pkg/types"
)

// scriptedBackend answers classification prompts with classifyReply and
// everything else with chatReply. invokeFails makes the next N invocations
// error.
type scriptedBackend struct {
	spec          types.BackendSpec
	loadErr       error
	classifyReply string
	chatReply     string
	invokeFails   atomic.Int32
	invocations   atomic.Int32
}

func (s *scriptedBackend) Load(ctx context.Context) error { return s.loadErr }

func (s *scriptedBackend) Invoke(ctx context.Context, in backend.Input) (backend.Output, error) {
	s.invocations.Add(1)
	if s.invokeFails.Add(-1) >= 0 {
		return backend.Output{}, errInvoke
	}
	if s.classifyReply != "" && strings.Contains(in.Message, "Analyze this user request") {
		return backend.Output{Content: s.classifyReply}, nil
	}
	reply := s.chatReply
	if reply == "" {
		reply = "reply from " + s.spec.ID
	}
	return backend.Output{Content: reply}, nil
}

func (s *scriptedBackend) Unload() error          { return nil }
func (s *scriptedBackend) EstimatedMemoryMB() int { return s.spec.EstMemoryMB }

var errInvoke = errScripted("scripted invocation failure")

type errScripted string

func (e errScripted) Error() string { return string(e) }

type orchEnv struct {
	orch  *Orchestrator
	mgr   *manager.Manager
	reg   *registry.Registry
	store *config.Store
	pub   *manager.MemoryPublisher

	mu       sync.Mutex
	backends map[string]*scriptedBackend
}

func (e *orchEnv) factory(spec types.BackendSpec) (backend.Backend, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.backends[spec.ID]
	if !ok {
		b = &scriptedBackend{}
		e.backends[spec.ID] = b
	}
	b.spec = spec
	return b, nil
}

// script registers behavior for a backend before it is first loaded.
func (e *orchEnv) script(id string, mut func(*scriptedBackend)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.backends[id]
	if !ok {
		b = &scriptedBackend{spec: types.BackendSpec{ID: id}}
		e.backends[id] = b
	}
	mut(b)
}

func orchCatalog() []types.BackendSpec {
	return []types.BackendSpec{
		{ID: "brain", Capability: types.CapabilityText, Priority: 1, Enabled: true, EstMemoryMB: 40},
		{ID: "blip-large", Capability: types.CapabilityVision, Priority: 1, Enabled: true, EstMemoryMB: 20},
		{ID: "whisper-base", Capability: types.CapabilitySpeechInput, Priority: 1, Enabled: true, MemoryEfficient: true, EstMemoryMB: 5},
		{ID: "layoutlmv3", Capability: types.CapabilityDocument, Priority: 1, Enabled: true, EstMemoryMB: 10},
	}
}

func newOrchEnv(t *testing.T, mut func(*config.Settings)) *orchEnv {
	t.Helper()
	reg, err := registry.New(orchCatalog(), "brain")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s := config.Settings{
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
	if mut != nil {
		mut(&s)
	}
	store, err := config.NewStore(s)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	env := &orchEnv{reg: reg, store: store, backends: make(map[string]*scriptedBackend)}
	env.pub = manager.NewMemoryPublisher()
	env.mgr = manager.NewWithConfig(manager.ManagerConfig{
		Registry:  reg,
		Factory:   env.factory,
		Settings:  store,
		Logger:    zerolog.Nop(),
		Publisher: env.pub,
	})
	t.Cleanup(env.mgr.Close)
	env.orch = New(Config{
		Registry:  reg,
		Manager:   env.mgr,
		Settings:  store,
		Logger:    zerolog.Nop(),
		Publisher: env.pub,
	})
	return env
}

// start makes the main brain resident or fails the test.
func (e *orchEnv) start(t *testing.T) {
	t.Helper()
	if err := e.orch.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
}
