// Package report renders the final run report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/zerr"
)

// Writer implements ports.Reporter, rendering a markdown summary of the run.
// The report is the single source of truth for whether the run succeeded.
type Writer struct{}

// NewWriter creates a new report Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the report to path.
func (w *Writer) Write(path string, report *domain.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrReportWriteFailed, "failed to create report directory"), "path", path), "cause", err.Error())
	}

	//nolint:gosec // Path is derived from the artifact layout
	if err := os.WriteFile(path, []byte(Render(report)), 0o644); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrReportWriteFailed, "failed to write report file"), "path", path), "cause", err.Error())
	}
	return nil
}

// Render produces the markdown text of the report.
func Render(report *domain.RunReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Repair run report\n\n")
	fmt.Fprintf(&b, "- Outcome: **%s**\n", report.Outcome)
	fmt.Fprintf(&b, "- Started: %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Finished: %s\n", report.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Iterations: %d\n\n", len(report.Iterations))

	if len(report.Iterations) > 0 {
		fmt.Fprintf(&b, "## Iterations\n\n")
		fmt.Fprintf(&b, "| Iteration | Apply failures | Verify failures | Validation passed | Validation failed |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|\n")
		for _, it := range report.Iterations {
			fmt.Fprintf(&b, "| %d | %d | %d | %d/%d | %d |\n",
				it.Iteration,
				countFailed(it.Apply),
				countFailed(it.Verify),
				it.Validation.Passed, it.Validation.Total,
				it.Validation.Failed,
			)
		}
		b.WriteString("\n")
	}

	if final, ok := report.FinalValidation(); ok && len(final.Failures) > 0 {
		fmt.Fprintf(&b, "## Remaining failures\n\n")
		for _, f := range final.Failures {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Name, f.Message)
		}
		b.WriteString("\n")
	}

	if len(report.Iterations) > 0 {
		last := report.Iterations[len(report.Iterations)-1]
		if len(last.Apply) > 0 {
			fmt.Fprintf(&b, "## Task outcomes (iteration %d)\n\n", last.Iteration)
			fmt.Fprintf(&b, "| Task | Category | Apply | Verify | Duration |\n")
			fmt.Fprintf(&b, "|---|---|---|---|---|\n")
			verifyByIndex := make(map[int]domain.JobResult, len(last.Verify))
			for _, r := range last.Verify {
				verifyByIndex[r.QueueIndex] = r
			}
			for _, r := range last.Apply {
				verify := "-"
				if vr, ok := verifyByIndex[r.QueueIndex]; ok {
					verify = status(vr)
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
					r.Task.Identity, r.Task.Category, status(r), verify, r.Duration.Round(time.Millisecond))
			}
		}
	}

	return b.String()
}

func countFailed(results []domain.JobResult) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

func status(r domain.JobResult) string {
	switch {
	case r.TimedOut:
		return "timeout"
	case r.Failed():
		return fmt.Sprintf("failed (%d)", r.ExitCode)
	default:
		return "ok"
	}
}
