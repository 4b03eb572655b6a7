package bootstrap

import (
	"context"

	"github.com/oshokin/pip-bootstrap/internal/config"
	"github.com/oshokin/pip-bootstrap/internal/domain/manifest"
	"github.com/oshokin/pip-bootstrap/internal/logger"
	"github.com/oshokin/pip-bootstrap/internal/service/installer"
)

// Bootstrapper runs the tool upgrade and the dependency install.
type Bootstrapper struct {
	// runner executes installer commands.
	runner installer.Runner
	// python is the interpreter invoked as `python -m pip`.
	python string
	// coreTools are upgraded by the first step.
	coreTools []string
	// indexURL is passed to pip when set.
	indexURL string
	// dryRun logs the plan without calling the runner.
	dryRun bool
	// listPipProcesses reports concurrent pip runs; nil disables the check.
	listPipProcesses func() ([]int, error)
}

// Option configures a Bootstrapper.
type Option func(*Bootstrapper)

// WithDryRun makes Bootstrap log the planned commands instead of running them.
func WithDryRun(dryRun bool) Option {
	return func(b *Bootstrapper) {
		b.dryRun = dryRun
	}
}

// WithProcessLister overrides the lookup of concurrent pip processes.
func WithProcessLister(list func() ([]int, error)) Option {
	return func(b *Bootstrapper) {
		b.listPipProcesses = list
	}
}

// New creates a Bootstrapper from validated settings.
func New(runner installer.Runner, cfg *config.Config, opts ...Option) *Bootstrapper {
	if runner == nil {
		runner = installer.NewExecRunner()
	}

	b := &Bootstrapper{
		runner:           runner,
		python:           cfg.Python,
		coreTools:        append([]string(nil), cfg.CoreTools...),
		indexURL:         cfg.IndexURL,
		listPipProcesses: installer.ActivePipProcesses,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Bootstrap upgrades the core tools and then installs manifestPath.
// It stops at the first failure and returns it as an *InstallationError.
func (b *Bootstrapper) Bootstrap(ctx context.Context, manifestPath string, disableCache bool) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return &InstallationError{
			Step:     StepManifest,
			ExitCode: installer.ExitCodeFailure,
			Err:      err,
		}
	}

	logger.InfoKV(ctx, "Loaded manifest",
		"path", m.Path, "requirements", len(m.Requirements()), "no_cache", disableCache)
	logger.DebugKV(ctx, "Manifest projects", "names", m.Names())

	b.warnAboutConcurrentPip(ctx)

	for _, step := range b.Plan(m.Path, disableCache) {
		if err = b.runStep(ctx, step); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bootstrapper) runStep(ctx context.Context, step Step) error {
	ctx = logger.WithKV(ctx, "step", string(step.Name))

	if b.dryRun {
		logger.InfoKV(ctx, "Dry run, skipping", "command", step.String())
		return nil
	}

	logger.InfoKV(ctx, "Running installer", "command", step.String())

	code, err := b.runner.Run(ctx, step.Program, step.Args...)
	if err == nil && code == 0 {
		logger.Info(ctx, "Step completed")
		return nil
	}

	if err == nil {
		err = errNonZeroExit
	}

	if code == 0 {
		code = installer.ExitCode(err)
	}

	return &InstallationError{
		Step:     step.Name,
		Command:  step.Display(),
		ExitCode: code,
		Err:      err,
	}
}

// warnAboutConcurrentPip logs other pip processes. Nothing is locked: pip
// guards its own environment.
func (b *Bootstrapper) warnAboutConcurrentPip(ctx context.Context) {
	if b.listPipProcesses == nil || b.dryRun {
		return
	}

	pids, err := b.listPipProcesses()
	if err != nil {
		logger.DebugKV(ctx, "Unable to list processes", "error", err)
		return
	}

	if len(pids) == 0 {
		return
	}

	logger.WarnKV(ctx, "Another pip process is running, installs may contend for the environment",
		"pids", pids)
}
