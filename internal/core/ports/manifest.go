package ports

import "go.trai.ch/mend/internal/core/domain"

// ManifestLoader loads the static task manifest. The manifest is read once
// per run and treated as read-only thereafter.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestLoader interface {
	// Load reads the manifest at path and returns the task queue in file order.
	Load(path string) ([]domain.TaskDescriptor, error)
}
