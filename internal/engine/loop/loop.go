// Package loop implements the convergence loop that drives repair
// iterations until validation passes or the iteration ceiling is hit.
package loop

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/mend/internal/engine/pool"
	"go.trai.ch/zerr"
)

// Engine orchestrates the phase sequence. One Engine serves any number of
// runs; all per-run state lives on the run value.
type Engine struct {
	pool      *pool.Pool
	validator ports.Validator
	states    ports.RunStateStore
	reporter  ports.Reporter
	logger    ports.Logger
	tracer    ports.Tracer
}

// NewEngine creates a new convergence loop Engine.
func NewEngine(
	p *pool.Pool,
	validator ports.Validator,
	states ports.RunStateStore,
	reporter ports.Reporter,
	logger ports.Logger,
	tracer ports.Tracer,
) *Engine {
	return &Engine{
		pool:      p,
		validator: validator,
		states:    states,
		reporter:  reporter,
		logger:    logger,
		tracer:    tracer,
	}
}

// run is the per-run state of one Engine.Run call.
type run struct {
	engine *Engine
	cfg    domain.Config
	layout domain.Layout
	tpl    *templates
	pc     domain.PhaseContext
}

// Run drives the loop over the task queue until validation converges, the
// iteration ceiling is reached, or a required collaborator fails.
//
// Every exit path finalizes exactly one report. A ceiling exit is not an
// error here; the caller decides how to surface it.
func (e *Engine) Run(
	ctx context.Context,
	cfg domain.Config,
	queue []domain.TaskDescriptor,
	resume bool,
) (report *domain.RunReport, err error) {
	layout := domain.NewLayout(cfg.ArtifactsDir)
	report = &domain.RunReport{
		Outcome:   domain.OutcomeAborted,
		StartedAt: time.Now(),
	}
	defer func() {
		report.FinishedAt = time.Now()
		if werr := e.reporter.Write(layout.ReportPath(), report); werr != nil {
			e.logger.Error(werr)
		}
	}()

	tpl, err := parseTemplates(cfg.Prompts)
	if err != nil {
		return report, err
	}

	r := &run{
		engine: e,
		cfg:    cfg,
		layout: layout,
		tpl:    tpl,
		pc: domain.PhaseContext{
			Iteration:    1,
			Plans:        make(map[string]string, len(queue)),
			WorkDir:      cfg.WorkDir,
			ArtifactsDir: cfg.ArtifactsDir,
		},
	}

	startIter, skipSetup, rerr := r.prepare(queue, resume)
	if rerr != nil {
		return report, rerr
	}

	setupDone := skipSetup || startIter > 1

	for i := startIter; ; i++ {
		r.pc.Iteration = i

		// Setup: regenerate plans and checks against current guidance,
		// except when trusted artifacts already cover this iteration.
		if !(skipSetup && i == startIter) {
			if i > 1 {
				if err := r.discardStale(queue); err != nil {
					return report, err
				}
			}
			if err := r.propose(ctx, queue); err != nil {
				return report, err
			}
			if !setupDone {
				r.scaffoldSetup(ctx)
				setupDone = true
			}
			if err := r.scaffoldChecks(ctx, queue); err != nil {
				return report, err
			}
		}

		// Working: the full queue runs apply and verify every iteration.
		applyResults, err := r.apply(ctx, queue)
		if err != nil {
			return report, err
		}
		verifyResults, err := r.verify(ctx, queue)
		if err != nil {
			return report, err
		}
		state := domain.IterationState{Iteration: i, Apply: applyResults, Verify: verifyResults}

		// Evaluating: a harness that cannot produce a report aborts the run,
		// no further iteration can produce a meaningful signal.
		validation, verr := e.validator.Run(ctx, cfg.Validation, cfg.WorkDir)
		if verr != nil {
			report.Iterations = append(report.Iterations, state)
			return report, verr
		}
		state.Validation = validation
		report.Iterations = append(report.Iterations, state)

		e.logger.Info(fmt.Sprintf("phase=validate iteration=%d passed=%d failed=%d total=%d",
			i, validation.Passed, validation.Failed, validation.Total))

		if validation.Converged() {
			report.Outcome = domain.OutcomePass
			r.saveState(i, domain.PhaseValidate)
			return report, nil
		}
		if i >= cfg.MaxIterations {
			report.Outcome = domain.OutcomeCeiling
			r.saveState(i, domain.PhaseValidate)
			return report, nil
		}

		// Analyzing: distill the failures into guidance for the next pass.
		guidance, aerr := r.analyze(ctx, validation)
		if aerr != nil {
			return report, aerr
		}
		r.pc.Guidance = guidance
		r.saveState(i+1, domain.PhaseAnalyze)
	}
}

// prepare resolves the starting iteration and whether the setup phases can
// be skipped, either from the resume state or from artifacts already on disk.
func (r *run) prepare(queue []domain.TaskDescriptor, resume bool) (startIter int, skipSetup bool, err error) {
	if !resume {
		// A completed setup from an earlier run is reusable as-is on a
		// fresh first iteration.
		if plans, ok := r.plansOnDisk(queue); ok {
			r.pc.Plans = plans
			r.engine.logger.Info("reusing plan and check artifacts found on disk")
			return 1, true, nil
		}
		return 1, false, nil
	}

	state, err := r.engine.states.Load(r.layout.StatePath())
	if err != nil {
		return 0, false, err
	}
	if state == nil {
		return 0, false, zerr.With(zerr.Wrap(domain.ErrNoResumeState, "cannot resume"), "path", r.layout.StatePath())
	}

	startIter = state.Iteration
	if startIter < 1 {
		startIter = 1
	}
	r.pc.Guidance = readArtifact(r.layout.GuidancePath(startIter - 1))

	// Setup artifacts are only trusted when they were generated against the
	// guidance we just recovered. A mismatch means they are stale.
	if state.GuidanceSum == r.engine.states.Fingerprint([]byte(r.pc.Guidance)) {
		if plans, ok := r.plansOnDisk(queue); ok {
			r.pc.Plans = plans
			r.engine.logger.Info(fmt.Sprintf("resuming at iteration %d with trusted artifacts", startIter))
			return startIter, true, nil
		}
	}

	r.engine.logger.Warn(fmt.Sprintf("resuming at iteration %d, artifacts are stale and will be regenerated", startIter))
	return startIter, false, nil
}

// saveState persists the resume point. The report stays the source of truth,
// so a failed save is logged rather than failing the run.
func (r *run) saveState(iteration int, phase domain.Phase) {
	state := domain.RunState{
		Iteration:   iteration,
		Phase:       string(phase),
		GuidanceSum: r.engine.states.Fingerprint([]byte(r.pc.Guidance)),
		UpdatedAt:   time.Now(),
	}
	if err := r.engine.states.Save(r.layout.StatePath(), state); err != nil {
		r.engine.logger.Error(err)
	}
}
