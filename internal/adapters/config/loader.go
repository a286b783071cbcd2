// Package config provides the configuration loader for mend.
package config

import (
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given working directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.Config, error) {
	path := filepath.Join(cwd, l.Filename)
	return Load(path)
}

// Load reads a configuration file from the given path and returns a
// normalized domain.Config.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file Mendfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	pollInterval, err := parseDuration(file.PollInterval)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid poll_interval"), "value", file.PollInterval)
	}

	jobTimeout, err := parseDuration(file.JobTimeout)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid job_timeout"), "value", file.JobTimeout)
	}

	cfg := &domain.Config{
		ManifestPath:  file.Manifest,
		ArtifactsDir:  file.ArtifactsDir,
		WorkDir:       file.WorkDir,
		Workers:       file.Workers,
		MaxIterations: file.MaxIterations,
		PollInterval:  pollInterval,
		JobTimeout:    jobTimeout,
		Worker: domain.WorkerConfig{
			Command: file.Worker.Command,
			Model:   file.Worker.Model,
			Context: file.Worker.Context,
		},
		Validation: domain.ValidationConfig{
			Command: file.Validation.Command,
			Report:  file.Validation.Report,
		},
		Prompts: domain.PromptConfig{
			Propose:       file.Prompts.Propose,
			ScaffoldSetup: file.Prompts.ScaffoldSetup,
			ScaffoldCheck: file.Prompts.ScaffoldCheck,
			Apply:         file.Prompts.Apply,
			Verify:        file.Prompts.Verify,
			Analyze:       file.Prompts.Analyze,
		},
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
