package harness_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mend/internal/adapters/harness"
	"go.trai.ch/mend/internal/core/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string) {}
func (nopLogger) Warn(string) {}
func (nopLogger) Error(error) {}

func TestRun_ParsesReport(t *testing.T) {
	dir := t.TempDir()
	content := `{"total":10,"passed":7,"failed":3,"failures":[{"name":"codec/frame","message":"mismatch"}]}`

	v := harness.NewValidator(nopLogger{})
	res, err := v.Run(context.Background(), domain.ValidationConfig{
		Command: []string{"sh", "-c", "printf '%s' '" + content + "' > validation.json"},
		Report:  "validation.json",
	}, dir)
	require.NoError(t, err)

	assert.Equal(t, 10, res.Total)
	assert.Equal(t, 7, res.Passed)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "codec/frame", res.Failures[0].Name)
	assert.False(t, res.Converged())
}

func TestRun_HarnessExitsNonZero(t *testing.T) {
	// Failing checks conventionally make the harness exit 1; the report
	// still counts.
	v := harness.NewValidator(nopLogger{})
	res, err := v.Run(context.Background(), domain.ValidationConfig{
		Command: []string{"sh", "-c", `printf '{"total":2,"passed":0,"failed":2}' > validation.json; exit 1`},
		Report:  "validation.json",
	}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
}

func TestRun_MissingHarness(t *testing.T) {
	v := harness.NewValidator(nopLogger{})
	_, err := v.Run(context.Background(), domain.ValidationConfig{
		Command: []string{"/nonexistent/harness"},
		Report:  "validation.json",
	}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidationHarnessFailed))
}

func TestRun_MissingReport(t *testing.T) {
	v := harness.NewValidator(nopLogger{})
	_, err := v.Run(context.Background(), domain.ValidationConfig{
		Command: []string{"true"},
		Report:  "validation.json",
	}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidationReportMissing))
}

func TestRun_MalformedReport(t *testing.T) {
	v := harness.NewValidator(nopLogger{})
	_, err := v.Run(context.Background(), domain.ValidationConfig{
		Command: []string{"sh", "-c", "printf 'not json' > validation.json"},
		Report:  "validation.json",
	}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidationReportMalformed))
}

func TestRun_StaleReportIsNotReused(t *testing.T) {
	// A report left behind by an earlier invocation must not masquerade as
	// this run's result when the harness dies before writing a fresh one.
	dir := t.TempDir()
	stale := filepath.Join(dir, "validation.json")
	require.NoError(t, os.WriteFile(stale, []byte(`{"total":5,"passed":5,"failed":0}`), 0o600))

	v := harness.NewValidator(nopLogger{})
	_, err := v.Run(context.Background(), domain.ValidationConfig{
		Command: []string{"sh", "-c", "exit 1"},
		Report:  "validation.json",
	}, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidationReportMissing))
	assert.NoFileExists(t, stale)
}
