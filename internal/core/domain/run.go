package domain

import "time"

// Phase names one stage of the repair loop. Phases run either once per task
// (through the worker pool) or once globally.
type Phase string

const (
	// PhasePropose produces a per-task repair plan.
	PhasePropose Phase = "propose"
	// PhaseScaffold establishes the verification harness and per-task checks.
	PhaseScaffold Phase = "scaffold"
	// PhaseApply performs each task's transformation, guided by its plan.
	PhaseApply Phase = "apply"
	// PhaseVerify re-examines each task's own output.
	PhaseVerify Phase = "verify"
	// PhaseValidate runs the external validation harness once per iteration.
	PhaseValidate Phase = "validate"
	// PhaseAnalyze turns validation failures into guidance for the next iteration.
	PhaseAnalyze Phase = "analyze"
)

// FailedItem names one validation failure with its message.
type FailedItem struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ValidationResult is the aggregate pass/fail signal produced by the
// external validation harness. It is the sole input to the loop's
// continue/stop decision.
type ValidationResult struct {
	Total    int          `json:"total"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	Failures []FailedItem `json:"failures"`
}

// Converged reports whether the run has reached its terminal success
// condition: everything passed and the harness actually checked something.
func (v ValidationResult) Converged() bool {
	return v.Failed == 0 && v.Total > 0
}

// IterationState captures the outcome of one Working/Evaluating cycle.
// States are superseded, never deleted; the full history is retained
// on the RunReport for audit.
type IterationState struct {
	Iteration  int
	Apply      []JobResult
	Verify     []JobResult
	Validation ValidationResult
}

// RunOutcome is the terminal state of a convergence loop run.
type RunOutcome string

const (
	// OutcomePass means validation reported zero failures.
	OutcomePass RunOutcome = "pass"
	// OutcomeCeiling means the iteration ceiling was reached without convergence.
	OutcomeCeiling RunOutcome = "ceiling"
	// OutcomeAborted means a required external collaborator failed mid-run.
	OutcomeAborted RunOutcome = "aborted"
)

// RunReport is the single written record of a run. Every run finalizes
// exactly one report, whether it converges, hits the ceiling or aborts.
type RunReport struct {
	Outcome    RunOutcome
	Iterations []IterationState
	StartedAt  time.Time
	FinishedAt time.Time
}

// FinalValidation returns the last iteration's validation result, if any.
func (r *RunReport) FinalValidation() (ValidationResult, bool) {
	if len(r.Iterations) == 0 {
		return ValidationResult{}, false
	}
	return r.Iterations[len(r.Iterations)-1].Validation, true
}

// RunState is the durable resume point persisted between iterations.
type RunState struct {
	Iteration int `json:"iteration"`
	// Phase records the last completed phase.
	Phase string `json:"phase"`
	// GuidanceSum fingerprints the guidance artifact the recorded iteration
	// was built against. A mismatch on resume means the setup artifacts are
	// stale and must be regenerated.
	GuidanceSum string    `json:"guidance_sum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PhaseContext carries the accumulated cross-phase state into job spec
// builders. It is passed by value so data lineage between iterations stays
// traceable and serializable for resume support.
type PhaseContext struct {
	Iteration int
	// Guidance is the lessons-learned text produced by the analyze phase
	// of the previous iteration. Empty on iteration 1.
	Guidance string
	// Plans maps task identity to the plan text produced by the propose phase.
	Plans map[string]string
	// WorkDir is the directory worker processes run in.
	WorkDir string
	// ArtifactsDir is the root for logs, plans, checks, guidance and state.
	ArtifactsDir string
}
