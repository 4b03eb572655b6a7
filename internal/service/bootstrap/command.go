package bootstrap

import (
	"context"
	"fmt"

	"github.com/oshokin/pip-bootstrap/internal/config"
	"github.com/oshokin/pip-bootstrap/internal/logger"
	"github.com/oshokin/pip-bootstrap/internal/service/installer"
)

// Options are the CLI inputs. Non-empty values override the settings file.
type Options struct {
	// ConfigPath is the settings file, YAML or TOML.
	ConfigPath string
	// ConfigRequired makes a missing settings file an error.
	ConfigRequired bool
	// Requirements overrides the manifest path.
	Requirements string
	// Python overrides the interpreter.
	Python string
	// IndexURL overrides the package index.
	IndexURL string
	// LogLevel overrides the log level.
	LogLevel string
	// NoCache enables cache bypass; it cannot switch off no_cache from settings.
	NoCache bool
	// DryRun logs the plan without running the installer.
	DryRun bool
	// Runner executes installer commands. Nil runs them on the host.
	Runner installer.Runner
}

// Run resolves settings and bootstraps the environment.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pip-bootstrap")

	cfg, err := resolveConfig(opts)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if lvl, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(lvl)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	logger.DebugKV(ctx, "Resolved settings",
		"python", cfg.Python,
		"core_tools", cfg.CoreTools,
		"index_url", config.RedactURL(cfg.IndexURL),
		"timeout", cfg.Timeout.String())

	b := New(opts.Runner, cfg, WithDryRun(opts.DryRun))

	if err = b.Bootstrap(ctx, cfg.Requirements, cfg.NoCache); err != nil {
		logger.ErrorKV(ctx, "Bootstrap failed", "error", err, "exit_code", ExitCode(err))
		return err
	}

	logger.Info(ctx, "Bootstrap completed")

	return nil
}

// resolveConfig loads the settings file and applies CLI overrides.
func resolveConfig(opts *Options) (*config.Config, error) {
	load := config.LoadOptional
	if opts.ConfigRequired {
		load = config.Load
	}

	cfg, err := load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Requirements != "" {
		cfg.Requirements = opts.Requirements
	}

	if opts.Python != "" {
		cfg.Python = opts.Python
	}

	if opts.IndexURL != "" {
		cfg.IndexURL = opts.IndexURL
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	cfg.NoCache = cfg.NoCache || opts.NoCache

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
