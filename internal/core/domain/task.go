package domain

// TaskDescriptor identifies one unit of repairable work.
// Descriptors are loaded once from the manifest at startup and are
// read-only for the lifetime of the run; every phase and iteration
// references them by value.
type TaskDescriptor struct {
	// Identity is the unique, stable name of the task across iterations.
	Identity string
	// Source is the location of the task's subject, typically a file path.
	Source string
	// Category groups related tasks for reporting.
	Category string
	// OriginalIdentity preserves the pre-migration name for later remapping.
	OriginalIdentity string
}
