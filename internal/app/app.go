// Package app implements the application layer for mend.
package app

import (
	"context"
	"fmt"
	"os"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/mend/internal/engine/loop"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader   ports.ConfigLoader
	manifestLoader ports.ManifestLoader
	engine         *loop.Engine
	logger         ports.Logger
}

// New creates a new App instance.
func New(
	configs ports.ConfigLoader,
	manifests ports.ManifestLoader,
	engine *loop.Engine,
	logger ports.Logger,
) *App {
	return &App{
		configLoader:   configs,
		manifestLoader: manifests,
		engine:         engine,
		logger:         logger,
	}
}

// RunOptions carries the command-line overrides for one repair run.
type RunOptions struct {
	// Resume re-enters the loop at the recorded iteration instead of
	// starting a fresh run.
	Resume bool
	// Workers overrides the configured worker count when positive.
	Workers int
	// MaxIterations overrides the configured iteration ceiling when positive.
	MaxIterations int
}

// Run executes one repair run over the configured task manifest.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	// 1. Load the configuration
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.MaxIterations > 0 {
		cfg.MaxIterations = opts.MaxIterations
	}

	// 2. Load the task queue
	tasks, err := a.manifestLoader.Load(cfg.ManifestPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load task manifest")
	}

	if err := os.MkdirAll(cfg.ArtifactsDir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create artifacts directory")
	}

	// 3. Drive the convergence loop
	report, err := a.engine.Run(ctx, *cfg, tasks, opts.Resume)
	if err != nil {
		return zerr.Wrap(err, "repair run failed")
	}

	a.logger.Info(fmt.Sprintf("run finished: outcome=%s iterations=%d report=%s",
		report.Outcome, len(report.Iterations), domain.NewLayout(cfg.ArtifactsDir).ReportPath()))

	if report.Outcome == domain.OutcomeCeiling {
		return zerr.With(zerr.Wrap(domain.ErrCeilingReached, "run did not converge"), "iterations", len(report.Iterations))
	}
	return nil
}

// Clean removes the artifacts directory, including logs, plans, checks,
// guidance, run state and the report.
func (a *App) Clean() error {
	cfg, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if err := os.RemoveAll(cfg.ArtifactsDir); err != nil {
		return zerr.Wrap(err, "failed to remove artifacts directory")
	}

	a.logger.Info("removed " + cfg.ArtifactsDir)
	return nil
}
