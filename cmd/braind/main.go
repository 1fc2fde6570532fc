package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"braind/internal/backend"
	"braind/internal/config"
	"braind/internal/httpapi"
	"braind/internal/manager"
	"braind/internal/metrics"
	"braind/internal/orchestrator"
	"braind/internal/registry"
	"braind/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		cfgPath    string
		addr       string
		budgetMB   int
		logLevel   string
		gcInterval time.Duration
	)

	root := &cobra.Command{
		Use:           "braind",
		Short:         "Capability router with on-demand backend loading",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultConfig()
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = merge(cfg, loaded)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("budget-mb") {
				cfg.MemoryBudgetMB = budgetMB
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return run(cfg, gcInterval)
		},
	}

	defaultAddr := ":8080"
	if v := os.Getenv("BRAIND_ADDR"); v != "" {
		defaultAddr = v
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", os.Getenv("BRAIND_CONFIG"), "Path to config file (yaml/json/toml)")
	root.Flags().StringVar(&addr, "addr", defaultAddr, "HTTP listen address, e.g. :8080")
	root.Flags().IntVar(&budgetMB, "budget-mb", 0, "Memory budget in MB for loaded backends (0=unlimited)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	root.Flags().DurationVar(&gcInterval, "gc-interval", 30*time.Second, "Eviction sweep interval")

	return root
}

// defaultConfig is the built-in catalog used when no config file is given:
// a resident text brain plus one specialist per capability family.
func defaultConfig() config.Config {
	return config.Config{
		Addr:        ":8080",
		LogLevel:    "info",
		MainBackend: "deepseek-r1",
		Settings:    config.DefaultSettings(),
		Backends: []types.BackendSpec{
			{ID: "deepseek-r1", Capability: types.CapabilityText, Priority: 1, Enabled: true, EstMemoryMB: 4096},
			{ID: "blip-large", Capability: types.CapabilityVision, Priority: 1, Enabled: true, EstMemoryMB: 2048},
			{ID: "whisper-base", Capability: types.CapabilitySpeechInput, Priority: 1, Enabled: true, MemoryEfficient: true, EstMemoryMB: 512},
			{ID: "tacotron2", Capability: types.CapabilitySpeechOutput, Priority: 1, Enabled: true, MemoryEfficient: true, EstMemoryMB: 512},
			{ID: "videomae-base", Capability: types.CapabilityVideo, Priority: 1, Enabled: true, EstMemoryMB: 2048},
			{ID: "layoutlmv3", Capability: types.CapabilityDocument, Priority: 1, Enabled: true, EstMemoryMB: 1024},
			{ID: "musicgen-small", Capability: types.CapabilityAudioGeneration, Priority: 1, Enabled: true, EstMemoryMB: 1536},
			{ID: "minilm-l6", Capability: types.CapabilityEmbedding, Priority: 1, Enabled: true, MemoryEfficient: true, EstMemoryMB: 256},
		},
	}
}

// merge overlays non-zero fields of loaded onto base.
func merge(base, loaded config.Config) config.Config {
	out := loaded
	if out.Addr == "" {
		out.Addr = base.Addr
	}
	if out.LogLevel == "" {
		out.LogLevel = base.LogLevel
	}
	if out.MainBackend == "" {
		out.MainBackend = base.MainBackend
	}
	if len(out.Backends) == 0 {
		out.Backends = base.Backends
	}
	// A file without a settings block keeps the defaults instead of zeroing
	// every toggle.
	if out.Settings == (config.Settings{}) {
		out.Settings = base.Settings
	}
	return out
}

func run(cfg config.Config, gcInterval time.Duration) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()

	reg, err := registry.New(cfg.Backends, cfg.MainBackend)
	if err != nil {
		return err
	}
	store, err := config.NewStore(cfg.Settings)
	if err != nil {
		return err
	}
	pub := metrics.NewPublisher()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:  reg,
		Factory:   backend.SimulatedFactory,
		Settings:  store,
		BudgetMB:  cfg.MemoryBudgetMB,
		Logger:    log.With().Str("component", "manager").Logger(),
		Publisher: pub,
	})
	defer mgr.Close()

	orch := orchestrator.New(orchestrator.Config{
		Registry:  reg,
		Manager:   mgr,
		Settings:  store,
		Logger:    log.With().Str("component", "orchestrator").Logger(),
		Publisher: pub,
	})

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()
	if err := orch.Start(startCtx); err != nil {
		return fmt.Errorf("main brain startup: %w", err)
	}

	stop := make(chan struct{})
	go mgr.Run(stop, gcInterval)

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetCORSOrigins(cfg.CORSOrigins)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(orch)}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("main", cfg.MainBackend).Msg("braind listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		close(stop)
		return err
	case <-sigCh:
	}
	close(stop)
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	return nil
}
