package installer

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

const (
	// ExitCodeNotFound is reported when the installer executable cannot be started.
	ExitCodeNotFound = 127
	// ExitCodeFailure is reported for failures that carry no exit status.
	ExitCodeFailure = 1
)

// Runner executes one installer command and reports its exit code.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// ExecRunner runs commands on the local host via os/exec.
type ExecRunner struct {
	// Stdout receives the child's standard output. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives the child's standard error. Defaults to os.Stderr.
	Stderr io.Writer
	// Env is appended to the current environment.
	Env []string
}

// NewExecRunner returns a runner attached to the current terminal.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts name with args, waits for it and returns its exit code.
// A zero code always comes with a nil error.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = writerOr(r.Stdout, os.Stdout)
	cmd.Stderr = writerOr(r.Stderr, os.Stderr)

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	return ExitCode(err), err
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}

		return ExitCodeFailure
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, os.ErrNotExist) {
		return ExitCodeNotFound
	}

	return ExitCodeFailure
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}

	return w
}
