// Command kaziaid is the CLI entrypoint for the career-assistant
// orchestration core: run a single dispatch against configured agents, or
// serve a long-lived HTTP process, grounded on the teacher's cmd/hector
// kong-based CLI (same Config/LogLevel global flags, sub-command-per-mode
// shape, signal-driven shutdown).
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaziai/core/evaluator"
	"github.com/kaziai/core/goal"
	"github.com/kaziai/core/internal/config"
	"github.com/kaziai/core/internal/metrics"
	"github.com/kaziai/core/internal/telemetry"
	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/memory"
	"github.com/kaziai/core/orchestrator"
	"github.com/kaziai/core/router"
	"github.com/kaziai/core/runtime"
	"github.com/kaziai/core/store"
	"github.com/kaziai/core/store/mysql"
	"github.com/kaziai/core/store/postgres"
	"github.com/kaziai/core/store/sqlite"
)

// services bundles every long-lived collaborator one kaziaid process needs,
// built once from a loaded Config.
type services struct {
	Backend      store.Backend
	Memory       *memory.Store
	Telemetry    *telemetry.Telemetry
	Metrics      *metrics.Metrics
	Router       *router.AgentRouter
	Orchestrator *orchestrator.Orchestrator
	Planner      *goal.Planner
}

func openBackend(cfg config.StoreConfig) (store.Backend, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.DSN)
	case "mysql":
		return mysql.Open(cfg.DSN)
	case "postgres":
		return postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownDriver, cfg.Driver)
	}
}

func newServices(ctx context.Context, cfg *config.Config) (*services, error) {
	backend, err := openBackend(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("kaziaid: opening store: %w", err)
	}

	registry, err := llms.NewRegistry(cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("kaziaid: building llm registry: %w", err)
	}
	provider, err := registry.Active(cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("kaziaid: selecting active llm provider: %w", err)
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("kaziaid: building telemetry: %w", err)
	}
	metricsReg := metrics.New()

	memStore, err := memory.NewStore(memory.Config{PersistPath: cfg.Memory.PersistPath}, memory.LocalEmbedder{})
	if err != nil {
		return nil, fmt.Errorf("kaziaid: building memory store: %w", err)
	}

	agentRouter := router.NewAgentRouter(provider)

	orch := &orchestrator.Orchestrator{
		Provider:     provider,
		Traces:       backend,
		Memory:       memStore,
		Evaluator:    evaluator.NewPipelineEvaluator(provider),
		Negotiations: backend,
		Config: runtime.Config{
			MaxSteps:   cfg.Orchestrator.MaxSteps,
			MaxRetries: cfg.Orchestrator.MaxRetries,
		},
		Tracer:    tel.Tracer("kaziaid"),
		Metrics:   metricsReg,
		Expertise: runtime.NewTraceExpertiseProvider(backend),
	}

	planner := goal.NewPlanner(provider, backend)

	slog.Info("kaziaid: services ready",
		"store_driver", cfg.Store.Driver, "llm_provider", cfg.Providers.Active, "telemetry_enabled", cfg.Telemetry.Enabled)

	return &services{
		Backend:      backend,
		Memory:       memStore,
		Telemetry:    tel,
		Metrics:      metricsReg,
		Router:       agentRouter,
		Orchestrator: orch,
		Planner:      planner,
	}, nil
}

func (s *services) Close(ctx context.Context) {
	if err := s.Telemetry.Shutdown(ctx); err != nil {
		slog.Warn("kaziaid: telemetry shutdown failed", "error", err)
	}
}
