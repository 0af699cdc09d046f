package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/nusig/internal/codegen"
	"github.com/vk/nusig/internal/config"
	"github.com/vk/nusig/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	settings *config.Model
	eval     config.Evaluator

	// ready is called once the watch loop has registered its directories.
	ready func()
}

// NewApp is the constructor for the main application. It loads the settings
// through loader and applies the overrides from cfg on top of them.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	paths := []string{config.DefaultFile}
	if cfg.ConfigFile != "" {
		paths = []string{cfg.ConfigFile}
	}
	settings, eval, err := loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Qualifier != "" {
		settings.Qualifier = cfg.Qualifier
	}
	if cfg.ImportPath != "" {
		settings.ImportPath = cfg.ImportPath
	}
	if cfg.Suffix != "" {
		settings.Suffix = cfg.Suffix
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Configuration loaded.", "qualifier", settings.Qualifier, "import_path", settings.ImportPath, "suffix", settings.Suffix)

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		settings: settings,
		eval:     eval,
	}, nil
}

// Settings returns the effective settings. This is primarily for testing.
func (a *App) Settings() *config.Model {
	return a.settings
}

func (a *App) codegenOptions() codegen.Options {
	return codegen.Options{Qualifier: a.settings.Qualifier}
}
