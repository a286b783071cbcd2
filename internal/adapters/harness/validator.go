// Package harness provides the external validation harness adapter.
package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/zerr"
)

// Validator implements ports.Validator by invoking the configured harness
// command and reading the JSON report it leaves behind. The report is an
// opaque external artifact; only the aggregate fields and the failure list
// are consumed.
type Validator struct {
	logger ports.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger ports.Logger) *Validator {
	return &Validator{logger: logger}
}

// Run invokes the harness once and parses its report.
func (v *Validator) Run(ctx context.Context, cfg domain.ValidationConfig, workDir string) (domain.ValidationResult, error) {
	if len(cfg.Command) == 0 {
		return domain.ValidationResult{}, domain.ErrMissingValidationCommand
	}

	reportPath := cfg.Report
	if workDir != "" && !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(workDir, reportPath)
	}

	// Clear any report left over from an earlier invocation. A harness that
	// dies before writing must surface as a missing report, not as last
	// iteration's counts.
	if err := os.Remove(reportPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.ValidationResult{}, zerr.With(
			zerr.Wrap(domain.ErrValidationHarnessFailed, "failed to clear previous report"),
			"path", reportPath,
		)
	}

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...) //nolint:gosec // harness command is configured by the operator
	if workDir != "" {
		cmd.Dir = workDir
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		// A harness conventionally exits non-zero while checks fail; that is
		// still a valid run as long as it leaves a report. Anything else
		// (binary missing, signal) is fatal for the whole loop.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return domain.ValidationResult{}, zerr.With(
				zerr.With(zerr.Wrap(domain.ErrValidationHarnessFailed, "failed to invoke harness"), "command", cfg.Command[0]),
				"cause", err.Error(),
			)
		}
		v.logger.Warn("validation harness exited non-zero: " + exitErr.Error())
	}

	data, err := os.ReadFile(reportPath) //nolint:gosec // report path is configured by the operator
	if err != nil {
		return domain.ValidationResult{}, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrValidationReportMissing, "failed to read report"), "path", reportPath),
			"cause", err.Error(),
		)
	}

	var result domain.ValidationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ValidationResult{}, zerr.With(
			zerr.With(zerr.Wrap(domain.ErrValidationReportMalformed, "failed to decode report"), "path", reportPath),
			"cause", err.Error(),
		)
	}

	return result, nil
}
