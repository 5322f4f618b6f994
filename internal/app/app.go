// Package app provides the top-level application lifecycle for the advisor.
// It wires together the event log, providers, cache, analytics, and the
// recommendation engine, then runs the analysis mode selected in the config.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sidkap/optadvisor/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	outputPath string
	closers    []func()
}

// New creates a new App. When outputPath is non-empty, analysis modes write
// their result JSON there in addition to logging it.
func New(cfg *config.Config, logger *slog.Logger, outputPath string) *App {
	return &App{
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "app")),
		outputPath: outputPath,
	}
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, and blocks until the mode finishes or the context is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting advisor",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case "full":
		return a.FullMode(ctx, deps)
	case "quick":
		return a.QuickMode(ctx, deps)
	case "risk":
		return a.RiskMode(ctx, deps)
	case "positions":
		return a.PositionsMode(ctx, deps)
	case "sentiment":
		return a.SentimentMode(ctx, deps)
	case "serve":
		return a.ServeMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down advisor")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// writeResult serializes a mode's result and, when an output path was given,
// writes it to disk for downstream tooling.
func (a *App) writeResult(result any) error {
	if a.outputPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("app: marshal result: %w", err)
	}
	if err := os.WriteFile(a.outputPath, data, 0o644); err != nil {
		return fmt.Errorf("app: write result to %s: %w", a.outputPath, err)
	}
	a.logger.Info("wrote analysis result", slog.String("path", a.outputPath))
	return nil
}
