package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pip-bootstrap/internal/config"
	"github.com/oshokin/pip-bootstrap/internal/logger"
)

// TestRun_AppliesOverrides lets CLI options win over the settings file.
func TestRun_AppliesOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manifestPath := writeManifest(t)
	cfgPath := filepath.Join(dir, "pip-bootstrap.yaml")

	require.NoError(t, config.Save(cfgPath, &config.Config{
		Python:       "python3.11",
		Requirements: filepath.Join(dir, "missing.txt"),
		CoreTools:    []string{"pip"},
	}))

	runner := new(fakeRunner)
	opts := &Options{
		ConfigPath:     cfgPath,
		ConfigRequired: true,
		Requirements:   manifestPath,
		NoCache:        true,
		Runner:         runner,
	}

	require.NoError(t, Run(context.Background(), opts))
	require.Len(t, runner.calls, 2)
	require.Equal(t, "python3.11", runner.calls[0].name)
	require.Equal(t, []string{"-m", "pip", "install", "--upgrade", "pip"}, runner.calls[0].args)
	require.Equal(t, []string{"-m", "pip", "install", "-r", manifestPath, NoCacheFlag}, runner.calls[1].args)
}

// TestRun_SettingsNoCache keeps no_cache from the settings file.
func TestRun_SettingsNoCache(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "pip-bootstrap.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("no_cache = true\n"), 0o600))

	runner := new(fakeRunner)
	opts := &Options{
		ConfigPath:   cfgPath,
		Requirements: writeManifest(t),
		Python:       "python3",
		Runner:       runner,
	}

	require.NoError(t, Run(context.Background(), opts))
	require.Contains(t, runner.calls[1].args, NoCacheFlag)
}

// TestRun_ConfigErrors covers a required missing file and a bad override.
func TestRun_ConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runner := new(fakeRunner)

	err := Run(context.Background(), &Options{
		ConfigPath:     filepath.Join(dir, "absent.yaml"),
		ConfigRequired: true,
		Runner:         runner,
	})
	require.ErrorIs(t, err, os.ErrNotExist)

	err = Run(context.Background(), &Options{
		ConfigPath: filepath.Join(dir, "absent.yaml"),
		IndexURL:   "::::",
		Runner:     runner,
	})
	require.Error(t, err)
	require.Empty(t, runner.calls)
}

// TestRun_MasksIndexCredentials keeps index passwords out of logs and errors
// while pip still receives the real URL.
func TestRun_MasksIndexCredentials(t *testing.T) {
	t.Parallel()

	const (
		secret   = "s3cr3tTOKEN"
		indexURL = "https://deploy:" + secret + "@pypi.corp.example/simple"
	)

	var buf bytes.Buffer

	ctx := logger.ToContext(context.Background(), logger.New(&buf))
	runner := &fakeRunner{codes: []int{0, 1}, errs: []error{nil, errors.New("exit status 1")}}

	err := Run(ctx, &Options{
		ConfigPath:   filepath.Join(t.TempDir(), "absent.yaml"),
		Requirements: writeManifest(t),
		Python:       "python3",
		IndexURL:     indexURL,
		LogLevel:     "debug",
		Runner:       runner,
	})
	require.Error(t, err)

	require.NotContains(t, err.Error(), secret)
	require.NotContains(t, buf.String(), secret)
	require.Contains(t, buf.String(), "deploy:xxxxx@pypi.corp.example")

	require.Len(t, runner.calls, 2)
	require.Contains(t, runner.calls[0].args, indexURL)
	require.Contains(t, runner.calls[1].args, indexURL)
}
