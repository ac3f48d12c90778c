package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/tickgrid/internal/config"
	"github.com/specialistvlad/tickgrid/internal/ctxlog"
	"github.com/specialistvlad/tickgrid/internal/entity"
	"github.com/specialistvlad/tickgrid/internal/frameloop"
	"github.com/specialistvlad/tickgrid/internal/handlers"
	"github.com/specialistvlad/tickgrid/internal/manifest"
	"github.com/specialistvlad/tickgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	handlers *handlers.Handlers
	registry *registry.Registry
	world    *entity.World
	loop     *frameloop.Loop

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It loads and resolves
// the manifests, then wires the registry, world and frame loop around them.
// Every instance has its own logger and registry.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...handlers.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Merge all configuration paths into a single collection for the loader.
	var paths []string
	if cfg.ModulesPath != "" {
		paths = append(paths, cfg.ModulesPath)
	}
	if cfg.GridPath != "" {
		paths = append(paths, cfg.GridPath)
	}

	model, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	h := handlers.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(h)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "handlers", h.Names())

	if err := manifest.Resolve(ctx, model, h); err != nil {
		return nil, err
	}
	logger.Debug("Manifest validation passed.")

	policy, err := parseEmptyGroupPolicy(cfg.EmptyGroups)
	if err != nil {
		return nil, err
	}
	provider := manifest.NewProvider(model, h, logger, outW)
	reg := registry.New(provider, registry.WithLogger(logger), registry.WithEmptyGroupPolicy(policy))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		model:    model,
		handlers: h,
		registry: reg,
		world:    entity.NewWorld(reg, logger),
		loop:     frameloop.New(reg, cfg.loopConfig(), logger),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// World returns the application's entity world. This is primarily for testing.
func (a *App) World() *entity.World {
	return a.world
}

// Stats returns the frame loop counters.
func (a *App) Stats() frameloop.Stats {
	return a.loop.Stats()
}
