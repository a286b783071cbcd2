// Package state persists the run's resume point as a flat JSON file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.RunStateStore using a flat JSON file.
type Store struct {
	mu sync.Mutex
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the run state at path. Returns nil, nil when none exists.
func (s *Store) Load(path string) (*domain.RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrStateReadFailed, "failed to read state file"), "path", path), "cause", err.Error())
	}

	var st domain.RunState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrStateReadFailed, "failed to decode state file"), "path", path), "cause", err.Error())
	}

	return &st, nil
}

// Save writes the run state to path.
func (s *Store) Save(path string, st domain.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStateWriteFailed, "failed to marshal state"), "cause", err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrStateWriteFailed, "failed to create state directory"), "path", path), "cause", err.Error())
	}

	//nolint:gosec // Path is derived from the artifact layout
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrStateWriteFailed, "failed to write state file"), "path", path), "cause", err.Error())
	}

	return nil
}

// Fingerprint returns a stable content checksum of data.
func (s *Store) Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
