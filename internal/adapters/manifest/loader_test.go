package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mend/internal/adapters/manifest"
	"go.trai.ch/mend/internal/core/domain"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeManifest(t, `
version: "1"
tasks:
  - id: codec/frame
    source: src/codec/frame.c
    category: codec
    original_id: legacy/frame
  - id: codec/header
    source: src/codec/header.c
    category: codec
`)

	tasks, err := manifest.NewLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// File order is preserved.
	assert.Equal(t, "codec/frame", tasks[0].Identity)
	assert.Equal(t, "src/codec/frame.c", tasks[0].Source)
	assert.Equal(t, "codec", tasks[0].Category)
	assert.Equal(t, "legacy/frame", tasks[0].OriginalIdentity)
	assert.Equal(t, "codec/header", tasks[1].Identity)
}

func TestLoad_DuplicateIdentity(t *testing.T) {
	path := writeManifest(t, `
tasks:
  - id: a
    source: a.c
  - id: a
    source: a2.c
`)

	_, err := manifest.NewLoader().Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateTaskIdentity))
}

func TestLoad_Empty(t *testing.T) {
	path := writeManifest(t, `version: "1"`)

	_, err := manifest.NewLoader().Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyManifest))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := manifest.NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_MissingID(t *testing.T) {
	path := writeManifest(t, `
tasks:
  - source: a.c
`)

	_, err := manifest.NewLoader().Load(path)
	require.Error(t, err)
}
