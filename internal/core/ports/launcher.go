// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/mend/internal/core/domain"
)

// Launcher starts external worker processes for the pool.
//
//go:generate mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks
type Launcher interface {
	// Launch starts the worker described by spec and returns a handle to it.
	// The process runs detached from the call; the pool observes it via Poll.
	Launch(ctx context.Context, spec domain.JobSpec) (Process, error)
}

// Process is a handle to one running worker. Each handle owns exactly one
// child process; handles are never shared between jobs.
type Process interface {
	// Poll reports whether the process has exited, without blocking.
	// exitCode is only meaningful when exited is true.
	Poll() (exited bool, exitCode int, err error)

	// Kill forcibly terminates the process. Poll reports the exit shortly after.
	Kill() error

	// Output returns the captured combined output. Complete once Poll has
	// reported the exit; best-effort before that.
	Output() string
}
