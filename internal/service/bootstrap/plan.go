package bootstrap

import (
	"slices"
	"strings"

	"github.com/oshokin/pip-bootstrap/internal/config"
)

// NoCacheFlag is pip's cache-bypass option.
const NoCacheFlag = "--no-cache-dir"

// Step is one installer invocation.
type Step struct {
	// Name identifies the step in logs and errors.
	Name StepName
	// Program is the executable, normally the Python interpreter.
	Program string
	// Args are passed to Program.
	Args []string
}

// Command returns Program followed by Args.
func (s Step) Command() []string {
	return append([]string{s.Program}, s.Args...)
}

// Display returns Command with credentials in URLs masked.
func (s Step) Display() []string {
	command := s.Command()
	for i, arg := range command {
		command[i] = config.RedactURL(arg)
	}

	return command
}

// String renders the masked command line for logs.
func (s Step) String() string {
	return strings.Join(s.Display(), " ")
}

// Plan returns the ordered installer calls for manifestPath.
// Only the dependency install honours disableCache.
func (b *Bootstrapper) Plan(manifestPath string, disableCache bool) []Step {
	upgrade := b.pipInstall("--upgrade")
	upgrade = append(upgrade, b.coreTools...)

	install := b.pipInstall("-r", manifestPath)
	if disableCache {
		install = append(install, NoCacheFlag)
	}

	return []Step{
		{Name: StepUpgradeTools, Program: b.python, Args: upgrade},
		{Name: StepInstallRequirements, Program: b.python, Args: install},
	}
}

// pipInstall builds `-m pip install [--index-url URL] extra...`.
func (b *Bootstrapper) pipInstall(extra ...string) []string {
	args := []string{"-m", "pip", "install"}
	if b.indexURL != "" {
		args = append(args, "--index-url", b.indexURL)
	}

	return append(args, slices.Clone(extra)...)
}
