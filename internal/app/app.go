package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/hypermdo/internal/casefile"
	"github.com/specialistvlad/hypermdo/internal/ctxlog"
	"github.com/specialistvlad/hypermdo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	suite    *casefile.Suite

	progress   *progress
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules, the physics modules compiled into the binary are used.
func NewApp(ctx context.Context, outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "models", reg.Models())

	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		progress: &progress{},
	}
	if cfg.CasePath == "" {
		return a, nil
	}

	suite, err := casefile.Load(ctx, cfg.CasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	for _, c := range suite.Cases {
		if _, ok := reg.Lookup(c.Model); !ok {
			return nil, fmt.Errorf("case '%s' (%s) uses unknown model '%s' (available: %v)", c.Name, c.Source, c.Model, reg.Models())
		}
	}
	a.suite = suite
	logger.Debug("Cases loaded.", "count", len(suite.Cases))
	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
