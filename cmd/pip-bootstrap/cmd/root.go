package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pip-bootstrap/internal/config"
	"github.com/oshokin/pip-bootstrap/internal/logger"
	"github.com/oshokin/pip-bootstrap/internal/service/bootstrap"
	"github.com/oshokin/pip-bootstrap/internal/version"
)

// rootOptions holds flag values of the root command.
type rootOptions struct {
	configPath string
	python     string
	indexURL   string
	logLevel   string
	noCache    bool
	dryRun     bool
}

// newRootCommand builds the command tree. Tests build a fresh tree per case.
func newRootCommand() *cobra.Command {
	flags := new(rootOptions)

	rootCmd := &cobra.Command{
		Use:   "pip-bootstrap [requirements-file]",
		Short: "Upgrade pip, setuptools and wheel, then install project requirements.",
		Long: `Prepares a Python environment in two steps:

  1. python -m pip install --upgrade pip setuptools wheel
  2. python -m pip install -r <requirements-file> [--no-cache-dir]

The second step only runs when the first one succeeds. The exit code of a
failing pip call becomes the exit code of pip-bootstrap. Settings are read
from pip-bootstrap.yaml (or a .toml file given with --config) when present.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &bootstrap.Options{
				ConfigPath:     flags.configPath,
				ConfigRequired: cmd.Flags().Changed("config"),
				Python:         flags.python,
				IndexURL:       flags.indexURL,
				LogLevel:       flags.logLevel,
				NoCache:        flags.noCache,
				DryRun:         flags.dryRun,
			}

			if len(args) > 0 {
				options.Requirements = args[0]
			}

			return bootstrap.Run(ctx, options)
		},
	}

	rootCmd.Flags().StringVarP(&flags.configPath, "config", "c", config.DefaultConfigFilename, "path to settings file (.yaml or .toml)")
	rootCmd.Flags().BoolVarP(&flags.noCache, "no-cache", "n", false, "install requirements with --no-cache-dir")
	rootCmd.Flags().StringVarP(&flags.python, "python", "p", "", "python interpreter (default from settings or "+config.DefaultPython()+")")
	rootCmd.Flags().StringVar(&flags.indexURL, "index-url", "", "package index passed to pip")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the pip commands without running them")
	rootCmd.Flags().StringVarP(&flags.logLevel, "log-level", "l", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newInitCommand())
	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

// Execute runs the CLI and exits with the status of the failing step.
func Execute() {
	err := newRootCommand().ExecuteContext(context.Background())

	logger.Sync()

	if err == nil {
		return
	}

	var installErr *bootstrap.InstallationError
	if !errors.As(err, &installErr) {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}

	os.Exit(bootstrap.ExitCode(err))
}
