package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Layout computes artifact paths under the artifacts directory. Log paths
// are keyed by the (phase, task identity, iteration) tuple so they are
// unique by construction.
type Layout struct {
	root string
}

// NewLayout creates a Layout rooted at dir.
func NewLayout(dir string) Layout {
	return Layout{root: filepath.Clean(dir)}
}

// Root returns the artifacts directory.
func (l Layout) Root() string {
	return l.root
}

// LogPath returns the capture path for one job.
func (l Layout) LogPath(phase Phase, identity string, iteration int) string {
	return filepath.Join(l.root, "logs", string(phase), fmt.Sprintf("iter-%d", iteration), SanitizeIdentity(identity)+".log")
}

// PlanPath returns the path of a task's plan artifact.
func (l Layout) PlanPath(identity string) string {
	return filepath.Join(l.root, "plans", SanitizeIdentity(identity)+".md")
}

// CheckPath returns the path of a task's scaffolded check artifact.
func (l Layout) CheckPath(identity string) string {
	return filepath.Join(l.root, "checks", SanitizeIdentity(identity)+".md")
}

// GuidancePath returns the path of the guidance artifact for an iteration.
func (l Layout) GuidancePath(iteration int) string {
	return filepath.Join(l.root, "guidance", fmt.Sprintf("iter-%d.md", iteration))
}

// StatePath returns the path of the durable run state.
func (l Layout) StatePath() string {
	return filepath.Join(l.root, "state.json")
}

// ReportPath returns the path of the final run report.
func (l Layout) ReportPath() string {
	return filepath.Join(l.root, "report.md")
}

// SanitizeIdentity maps a task identity to a filesystem-safe name.
func SanitizeIdentity(identity string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", " ", "_", ":", "-")
	return r.Replace(identity)
}
