package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/packforge/packforge/internal/ctxlog"
	"github.com/packforge/packforge/internal/executor"
	"github.com/packforge/packforge/internal/lockfile"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/platform"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	model *manifest.Model
	lock  *lockfile.File
	exec  executor.Executor

	outputs map[string]*Output
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, the manifest
// translated into the unified model, and the lock file parsed. A failure to
// load either input is a fatal startup error and panics; main recovers it
// into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader *manifest.Loader, exec executor.Executor) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ManifestPath)
	if err != nil {
		panic(fmt.Errorf("failed to load manifest: %w", err))
	}
	logger.Debug("Manifest loaded.", "project", model.Project.Name, "version", model.Project.Version)

	lock, err := lockfile.Load(cfg.LockPath)
	if err != nil {
		panic(fmt.Errorf("failed to load lock file: %w", err))
	}
	logger.Debug("Lock file parsed.", "pinned_packages", len(lock.Packages))

	if exec == nil {
		exec = executor.NewLocal(cfg.OutDir)
	}

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		model:   model,
		lock:    lock,
		exec:    exec,
		outputs: make(map[string]*Output),
	}
}

// Model returns the loaded manifest model. This is primarily for testing.
func (a *App) Model() *manifest.Model { return a.model }

// Outputs returns the composed per-platform outputs after Run.
func (a *App) Outputs() map[string]*Output { return a.outputs }

// matrix resolves the configured platform list, defaulting to the full
// cross product.
func (a *App) matrix() (*platform.Matrix, error) {
	if len(a.config.Systems) == 0 {
		return platform.DefaultMatrix(), nil
	}
	var ps []platform.Platform
	for _, id := range a.config.Systems {
		p, err := platform.Parse(id)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return platform.NewMatrix(ps...), nil
}
