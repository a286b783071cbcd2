package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidWorkerCount is returned when the pool is asked to run with zero or fewer workers.
	ErrInvalidWorkerCount = zerr.New("worker count must be at least 1")

	// ErrDuplicateTaskIdentity is returned when the manifest contains two tasks with the same identity.
	ErrDuplicateTaskIdentity = zerr.New("duplicate task identity in manifest")

	// ErrEmptyManifest is returned when the manifest defines no tasks.
	ErrEmptyManifest = zerr.New("manifest defines no tasks")

	// ErrManifestReadFailed is returned when the manifest file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest file")

	// ErrManifestParseFailed is returned when the manifest file cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse manifest file")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrMissingWorkerCommand is returned when the config does not define a worker command.
	ErrMissingWorkerCommand = zerr.New("worker command is not configured")

	// ErrMissingValidationCommand is returned when the config does not define a validation command.
	ErrMissingValidationCommand = zerr.New("validation command is not configured")

	// ErrValidationHarnessFailed is returned when the validation harness cannot produce a report.
	// This aborts the run, since no further iteration can produce a meaningful signal.
	ErrValidationHarnessFailed = zerr.New("validation harness failed")

	// ErrValidationReportMissing is returned when the harness exits without leaving a report.
	ErrValidationReportMissing = zerr.New("validation report not found")

	// ErrValidationReportMalformed is returned when the validation report cannot be parsed.
	ErrValidationReportMalformed = zerr.New("failed to parse validation report")

	// ErrStateReadFailed is returned when the run state file cannot be read.
	ErrStateReadFailed = zerr.New("failed to read run state")

	// ErrStateWriteFailed is returned when the run state file cannot be written.
	ErrStateWriteFailed = zerr.New("failed to write run state")

	// ErrNoResumeState is returned when --resume is requested but no run state exists.
	ErrNoResumeState = zerr.New("no run state to resume from")

	// ErrReportWriteFailed is returned when the final run report cannot be written.
	ErrReportWriteFailed = zerr.New("failed to write run report")

	// ErrCeilingReached is returned when the loop exhausts its iteration
	// budget without converging. The partial result is still finalized.
	ErrCeilingReached = zerr.New("iteration ceiling reached without convergence")

	// ErrRunAborted is returned when the loop stops before either Done state.
	ErrRunAborted = zerr.New("run aborted")
)
