package ports

import "go.trai.ch/mend/internal/core/domain"

// RunStateStore persists the loop's resume point between process runs.
//
//go:generate mockgen -source=state.go -destination=mocks/mock_state.go -package=mocks
type RunStateStore interface {
	// Load reads the run state at path. Returns nil, nil when none exists.
	Load(path string) (*domain.RunState, error)

	// Save writes the run state to path.
	Save(path string, state domain.RunState) error

	// Fingerprint returns a stable content checksum used to detect stale
	// artifacts on resume.
	Fingerprint(data []byte) string
}
