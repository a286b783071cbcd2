// Package manifest provides the task manifest loader.
package manifest

import (
	"os"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ManifestLoader using a YAML file.
type Loader struct{}

// NewLoader creates a new manifest Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Manifest represents the structure of the task manifest file.
type Manifest struct {
	Version string    `yaml:"version"`
	Tasks   []TaskDTO `yaml:"tasks"`
}

// TaskDTO represents one task entry in the manifest.
type TaskDTO struct {
	ID         string `yaml:"id"`
	Source     string `yaml:"source"`
	Category   string `yaml:"category"`
	OriginalID string `yaml:"original_id"`
}

// Load reads the manifest at path and returns the task queue in file order.
// Identities must be unique within one manifest.
func (l *Loader) Load(path string) ([]domain.TaskDescriptor, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestParseFailed.Error()), "path", path)
	}

	if len(m.Tasks) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrEmptyManifest, "manifest rejected"), "path", path)
	}

	seen := make(map[string]bool, len(m.Tasks))
	tasks := make([]domain.TaskDescriptor, 0, len(m.Tasks))
	for _, dto := range m.Tasks {
		if dto.ID == "" {
			return nil, zerr.With(zerr.New("task entry is missing an id"), "source", dto.Source)
		}
		if seen[dto.ID] {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicateTaskIdentity, "manifest rejected"), "id", dto.ID)
		}
		seen[dto.ID] = true

		tasks = append(tasks, domain.TaskDescriptor{
			Identity:         dto.ID,
			Source:           dto.Source,
			Category:         dto.Category,
			OriginalIdentity: dto.OriginalID,
		})
	}

	return tasks, nil
}
