package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `version: "1"
workers: 1
max_iterations: 1
poll_interval: 5ms
manifest: tasks.yaml
worker:
  command: ["true"]
validation:
  command: ["sh", "-c", "printf '{\"total\":1,\"passed\":1,\"failed\":0,\"failures\":[]}' > .mend/validation.json"]
`

const testManifest = `version: "1"
tasks:
  - id: alpha
    source: src/alpha.go
    category: fix
`

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		setup        func(t *testing.T, tmpDir string)
		args         []string
		expectedExit int
	}{
		{
			name: "Success with valid config",
			setup: func(t *testing.T, tmpDir string) {
				require.NoError(t, os.WriteFile(tmpDir+"/mend.yaml", []byte(testConfig), 0o600))
				require.NoError(t, os.WriteFile(tmpDir+"/tasks.yaml", []byte(testManifest), 0o600))
			},
			args:         []string{"mend", "run"},
			expectedExit: 0,
		},
		{
			name:         "Error with missing config",
			setup:        func(_ *testing.T, _ string) {},
			args:         []string{"mend", "-c", "nonexistent.yaml", "run"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setup(t, tmpDir)

			originalWd, _ := os.Getwd()
			require.NoError(t, os.Chdir(tmpDir))
			defer func() {
				_ = os.Chdir(originalWd)
			}()

			os.Args = tt.args

			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
