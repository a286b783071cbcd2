package domain

import "time"

// ExitInternal is the sentinel exit code recorded when a job never ran:
// the spec builder failed, the launch failed, or the run was aborted.
const ExitInternal = -1

// JobSpec describes one external worker invocation. A spec is built fresh
// per (phase, task, iteration) by a pure builder function and is never
// reused across phases.
type JobSpec struct {
	// Command is the worker argv prefix the payload file path is appended to.
	Command []string
	// Payload is the instruction text handed to the worker via a temp file.
	Payload string
	// WorkDir is the working directory for the worker process.
	WorkDir string
	// LogPath is where the worker's combined output is captured. Paths are
	// keyed by (phase, task identity, iteration) so concurrent workers never
	// share a file.
	LogPath string
	// Label names the job for logs, telemetry and results.
	Label string
	// ExtraContext lists additional context directories passed to the worker.
	ExtraContext []string
	// Model selects the worker model/variant, when the worker supports one.
	Model string
	// Timeout bounds the worker's wall-clock run time. Zero means no bound.
	Timeout time.Duration
}

// JobResult is the immutable outcome of one worker invocation.
type JobResult struct {
	ExitCode   int
	Duration   time.Duration
	Output     string
	Label      string
	QueueIndex int
	Task       TaskDescriptor
	// TimedOut marks results whose process was killed at its deadline.
	TimedOut bool
}

// Failed reports whether the job ended unsuccessfully.
func (r JobResult) Failed() bool {
	return r.ExitCode != 0
}
