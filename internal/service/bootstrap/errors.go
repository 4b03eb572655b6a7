package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/pip-bootstrap/internal/service/installer"
)

// StepName identifies a bootstrap step.
type StepName string

const (
	// StepManifest is the pre-flight read of the requirements file.
	StepManifest StepName = "manifest"
	// StepUpgradeTools upgrades pip, setuptools and wheel.
	StepUpgradeTools StepName = "upgrade-tools"
	// StepInstallRequirements installs the manifest.
	StepInstallRequirements StepName = "install-requirements"
)

// errNonZeroExit is used when a runner reports a failing code without an error.
var errNonZeroExit = errors.New("installer exited with non-zero status")

// InstallationError reports a failed bootstrap step.
type InstallationError struct {
	// Step is the step that failed.
	Step StepName
	// Command is the masked argv of the failed installer call, empty for StepManifest.
	Command []string
	// ExitCode is the installer's exit code, propagated as the process exit code.
	ExitCode int
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *InstallationError) Error() string {
	if len(e.Command) == 0 {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}

	return fmt.Sprintf("%s: `%s` exited with code %d: %v",
		e.Step, strings.Join(e.Command, " "), e.ExitCode, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InstallationError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for err: 0 for nil, the installer's
// code for an *InstallationError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var installErr *InstallationError
	if errors.As(err, &installErr) && installErr.ExitCode > 0 {
		return installErr.ExitCode
	}

	return installer.ExitCodeFailure
}
