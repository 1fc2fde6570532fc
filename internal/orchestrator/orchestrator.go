package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/manager"
	"braind/internal/registry"
	"braind/pkg/types"
)

// Orchestrator is the public entry point: classify, route, invoke, account.
type Orchestrator struct {
	log        zerolog.Logger
	reg        *registry.Registry
	mgr        *manager.Manager
	settings   *config.Store
	classifier *Classifier
	router     *Router
	pub        manager.EventPublisher
	counters   counters
	sessions   *sessionTracker
	startTime  time.Time
}

// Config collects the collaborators the orchestrator ties together.
type Config struct {
	Registry  *registry.Registry
	Manager   *manager.Manager
	Settings  *config.Store
	Logger    zerolog.Logger
	Publisher manager.EventPublisher
}

// New wires the orchestrator. Call Start before handling requests.
func New(cfg Config) *Orchestrator {
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	return &Orchestrator{
		log:        cfg.Logger,
		reg:        cfg.Registry,
		mgr:        cfg.Manager,
		settings:   cfg.Settings,
		classifier: NewClassifier(cfg.Manager, cfg.Settings, cfg.Logger, pub),
		router:     NewRouter(cfg.Registry, cfg.Manager, cfg.Settings),
		pub:        pub,
		sessions:   newSessionTracker(),
		startTime:  time.Now(),
	}
}

// Start makes the main brain resident. Nothing can be classified without
// it, so startup fails when the main brain cannot load.
func (o *Orchestrator) Start(ctx context.Context) error {
	lease, err := o.mgr.Acquire(ctx, o.mgr.MainID())
	if err != nil {
		return err
	}
	lease.Release()
	o.log.Info().Str("backend", o.mgr.MainID()).Msg("main brain resident")
	return nil
}

// Ready reports whether the main brain is resident.
func (o *Orchestrator) Ready() bool { return o.mgr.MainReady() }

// Backends returns the catalog for the reporting layer.
func (o *Orchestrator) Backends() []types.BackendSpec { return o.reg.All() }

// Settings returns the active settings snapshot.
func (o *Orchestrator) Settings() config.Settings { return o.settings.Current() }

// UpdateSettings installs a new settings snapshot; it takes effect on the
// next acquire/route/sweep cycle.
func (o *Orchestrator) UpdateSettings(s config.Settings) error {
	return o.settings.Update(s)
}

// Handle processes one request end to end. Counters are updated exactly
// once per request; a failed specialized invocation is retried at most once
// against the main brain when fallback is enabled.
func (o *Orchestrator) Handle(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	start := time.Now()
	o.counters.requests.Add(1)
	o.counters.active.Add(1)
	defer o.counters.active.Add(-1)
	o.sessions.touch(req.SessionID)

	st := o.settings.Current()

	var (
		cap  types.Capability
		conf float64
	)
	if req.Capability != "" {
		parsed, err := types.ParseCapability(req.Capability)
		if err != nil {
			o.counters.errors.Add(1)
			return types.ChatResponse{}, err
		}
		cap, conf = parsed, 1.0
	} else {
		var err error
		cap, conf, err = o.classifier.Classify(ctx, req.Message)
		if err != nil {
			o.counters.errors.Add(1)
			o.log.Error().Err(err).Msg("classification failed")
			return types.ChatResponse{}, err
		}
	}

	dec := o.router.Route(cap, conf)
	o.log.Debug().Str("capability", string(cap)).Float64("confidence", conf).
		Str("decision", string(dec.Kind)).Str("backend", dec.BackendID).
		Str("reason", dec.Reason).Msg("routed")
	o.pub.Publish(manager.Event{Name: manager.EventRouted, BackendID: dec.BackendID,
		Fields: map[string]any{"decision": string(dec.Kind)}})

	resp := types.ChatResponse{Capability: cap, Confidence: conf}

	switch dec.Kind {
	case DecideReject:
		o.counters.errors.Add(1)
		return types.ChatResponse{}, ErrRejected(string(cap))

	case DecideMain:
		out, err := o.invoke(ctx, o.mgr.MainID(), req, cap, st)
		if err != nil {
			o.counters.errors.Add(1)
			return types.ChatResponse{}, err
		}
		resp.Backend = o.mgr.MainID()
		resp.Response = out.Content

	case DecideSpecialized:
		out, err := o.invoke(ctx, dec.BackendID, req, cap, st)
		if err == nil {
			resp.Backend = dec.BackendID
			resp.Response = out.Content
			break
		}
		o.counters.errors.Add(1)
		if !st.FallbackToMain {
			return types.ChatResponse{}, err
		}
		// One fallback attempt, never more: re-route the request through
		// the main brain.
		o.log.Warn().Str("backend", dec.BackendID).Err(err).Msg("falling back to main brain")
		o.pub.Publish(manager.Event{Name: manager.EventFallback, BackendID: dec.BackendID})
		out, ferr := o.invoke(ctx, o.mgr.MainID(), req, cap, st)
		if ferr != nil {
			return types.ChatResponse{}, ferr
		}
		resp.Backend = o.mgr.MainID()
		resp.Response = out.Content
		resp.FallbackUsed = true
	}

	resp.DurationMS = time.Since(start).Milliseconds()
	return resp, nil
}

// invoke acquires the backend, runs the invocation under the configured
// timeout, and releases the lease. Invocation errors are recorded with the
// lifecycle manager for routing cool-down.
func (o *Orchestrator) invoke(ctx context.Context, id string, req types.ChatRequest, cap types.Capability, st config.Settings) (backend.Output, error) {
	lease, err := o.mgr.Acquire(ctx, id)
	if err != nil {
		return backend.Output{}, err
	}
	defer lease.Release()

	ictx, cancel := context.WithTimeout(ctx, st.InvokeTimeout)
	defer cancel()
	out, err := lease.Backend().Invoke(ictx, backend.Input{
		Message:    req.Message,
		SessionID:  req.SessionID,
		Capability: cap,
	})
	if err != nil {
		o.mgr.NoteFailure(id)
		return backend.Output{}, ErrInvocationFailure(id, err)
	}
	return out, nil
}
