package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mend/internal/adapters/config"
	"go.trai.ch/mend/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `
version: "1"
manifest: work/tasks.yaml
artifacts_dir: out
workers: 3
max_iterations: 2
poll_interval: 250ms
job_timeout: 10m
worker:
  command: ["agent", "run"]
  model: fast
  context: ["docs"]
validation:
  command: ["make", "validate"]
  report: out/validation.json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "work/tasks.yaml", cfg.ManifestPath)
	assert.Equal(t, "out", cfg.ArtifactsDir)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, []string{"agent", "run"}, cfg.Worker.Command)
	assert.Equal(t, "fast", cfg.Worker.Model)
	assert.Equal(t, []string{"make", "validate"}, cfg.Validation.Command)
	assert.Equal(t, "out/validation.json", cfg.Validation.Report)

	// Unset prompts fall back to defaults.
	assert.NotEmpty(t, cfg.Prompts.Apply)
	assert.NotEmpty(t, cfg.Prompts.Analyze)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
worker:
  command: ["agent"]
validation:
  command: ["validate"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultWorkers, cfg.Workers)
	assert.Equal(t, domain.DefaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, domain.DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, domain.DefaultArtifactsDir, cfg.ArtifactsDir)
	assert.Equal(t, "tasks.yaml", cfg.ManifestPath)
	assert.Equal(t, ".", cfg.WorkDir)
}

func TestLoad_MissingWorkerCommand(t *testing.T) {
	path := writeConfig(t, `
validation:
  command: ["validate"]
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingWorkerCommand))
}

func TestLoad_MissingValidationCommand(t *testing.T) {
	path := writeConfig(t, `
worker:
  command: ["agent"]
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingValidationCommand))
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
poll_interval: soon
worker:
  command: ["agent"]
validation:
  command: ["validate"]
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
