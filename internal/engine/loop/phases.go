package loop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// templates holds the parsed per-phase payload templates.
type templates struct {
	propose       *template.Template
	scaffoldSetup *template.Template
	scaffoldCheck *template.Template
	apply         *template.Template
	verify        *template.Template
	analyze       *template.Template
}

func parseTemplates(p domain.PromptConfig) (*templates, error) {
	parse := func(name, text string) (*template.Template, error) {
		t, err := template.New(name).Parse(text)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to parse "+name+" payload template")
		}
		return t, nil
	}

	var t templates
	var err error
	if t.propose, err = parse("propose", p.Propose); err != nil {
		return nil, err
	}
	if t.scaffoldSetup, err = parse("scaffold-setup", p.ScaffoldSetup); err != nil {
		return nil, err
	}
	if t.scaffoldCheck, err = parse("scaffold-check", p.ScaffoldCheck); err != nil {
		return nil, err
	}
	if t.apply, err = parse("apply", p.Apply); err != nil {
		return nil, err
	}
	if t.verify, err = parse("verify", p.Verify); err != nil {
		return nil, err
	}
	if t.analyze, err = parse("analyze", p.Analyze); err != nil {
		return nil, err
	}
	return &t, nil
}

// promptData is the rendering context for payload templates.
type promptData struct {
	Task       domain.TaskDescriptor
	Plan       string
	Guidance   string
	Validation domain.ValidationResult
}

// runPhase dispatches one job per queued task through the pool, with payloads
// rendered from tpl. The data func supplies each task's rendering context.
func (r *run) runPhase(
	ctx context.Context,
	phase domain.Phase,
	queue []domain.TaskDescriptor,
	workers int,
	tpl *template.Template,
	data func(task domain.TaskDescriptor) promptData,
) ([]domain.JobResult, error) {
	ctx, span := r.engine.tracer.Start(ctx, string(phase))
	defer span.End()

	r.engine.logger.Info(fmt.Sprintf("phase=%s iteration=%d tasks=%d", phase, r.pc.Iteration, len(queue)))

	build := func(task domain.TaskDescriptor) (domain.JobSpec, error) {
		var buf bytes.Buffer
		if err := tpl.Execute(&buf, data(task)); err != nil {
			return domain.JobSpec{}, zerr.Wrap(err, "failed to render "+string(phase)+" payload")
		}
		return domain.JobSpec{
			Command:      r.cfg.Worker.Command,
			Payload:      buf.String(),
			WorkDir:      r.cfg.WorkDir,
			LogPath:      r.layout.LogPath(phase, task.Identity, r.pc.Iteration),
			Label:        string(phase) + ":" + task.Identity,
			ExtraContext: r.cfg.Worker.Context,
			Model:        r.cfg.Worker.Model,
			Timeout:      r.cfg.JobTimeout,
		}, nil
	}

	results, err := r.engine.pool.Run(ctx, queue, workers, build, r.cfg.PollInterval)
	if err != nil {
		span.RecordError(err)
		return results, err
	}
	return results, nil
}

// propose dispatches one planning job per task and records each worker's
// output as that task's plan artifact.
func (r *run) propose(ctx context.Context, queue []domain.TaskDescriptor) error {
	results, err := r.runPhase(ctx, domain.PhasePropose, queue, r.cfg.Workers, r.tpl.propose,
		func(task domain.TaskDescriptor) promptData {
			return promptData{Task: task, Guidance: r.pc.Guidance}
		})
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Failed() {
			r.engine.logger.Warn(fmt.Sprintf("phase=propose iteration=%d task=%s exit=%d",
				r.pc.Iteration, res.Task.Identity, res.ExitCode))
		}
		if err := writeArtifact(r.layout.PlanPath(res.Task.Identity), res.Output); err != nil {
			return err
		}
		r.pc.Plans[res.Task.Identity] = res.Output
	}
	return nil
}

// scaffoldSetup runs the one-time harness setup job. A setup failure is
// logged and the run proceeds; the per-task checks may still succeed.
func (r *run) scaffoldSetup(ctx context.Context) {
	setup := []domain.TaskDescriptor{{Identity: "harness-setup"}}
	results, err := r.runPhase(ctx, domain.PhaseScaffold, setup, 1, r.tpl.scaffoldSetup,
		func(task domain.TaskDescriptor) promptData {
			return promptData{Task: task, Guidance: r.pc.Guidance}
		})
	if err != nil {
		r.engine.logger.Warn("scaffold setup did not run: " + err.Error())
		return
	}
	if len(results) == 1 && results[0].Failed() {
		r.engine.logger.Warn(fmt.Sprintf("phase=scaffold iteration=%d task=harness-setup exit=%d, continuing",
			r.pc.Iteration, results[0].ExitCode))
	}
}

// scaffoldChecks dispatches one check-authoring job per task and records the
// outputs as check artifacts.
func (r *run) scaffoldChecks(ctx context.Context, queue []domain.TaskDescriptor) error {
	results, err := r.runPhase(ctx, domain.PhaseScaffold, queue, r.cfg.Workers, r.tpl.scaffoldCheck,
		func(task domain.TaskDescriptor) promptData {
			return promptData{Task: task, Guidance: r.pc.Guidance}
		})
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Failed() {
			r.engine.logger.Warn(fmt.Sprintf("phase=scaffold iteration=%d task=%s exit=%d",
				r.pc.Iteration, res.Task.Identity, res.ExitCode))
		}
		if err := writeArtifact(r.layout.CheckPath(res.Task.Identity), res.Output); err != nil {
			return err
		}
	}
	return nil
}

// apply dispatches the transformation job for every task in the queue.
func (r *run) apply(ctx context.Context, queue []domain.TaskDescriptor) ([]domain.JobResult, error) {
	return r.runPhase(ctx, domain.PhaseApply, queue, r.cfg.Workers, r.tpl.apply,
		func(task domain.TaskDescriptor) promptData {
			return promptData{Task: task, Plan: r.pc.Plans[task.Identity], Guidance: r.pc.Guidance}
		})
}

// verify dispatches the self-review job for every task in the queue.
func (r *run) verify(ctx context.Context, queue []domain.TaskDescriptor) ([]domain.JobResult, error) {
	return r.runPhase(ctx, domain.PhaseVerify, queue, r.cfg.Workers, r.tpl.verify,
		func(task domain.TaskDescriptor) promptData {
			return promptData{Task: task, Plan: r.pc.Plans[task.Identity], Guidance: r.pc.Guidance}
		})
}

// analyze runs the single guidance-revision job against the validation
// failures and persists the resulting guidance artifact. When the job itself
// fails, the failure list is distilled into guidance directly so the next
// iteration still has a signal to work from.
func (r *run) analyze(ctx context.Context, validation domain.ValidationResult) (string, error) {
	task := []domain.TaskDescriptor{{Identity: "analyze"}}
	results, err := r.runPhase(ctx, domain.PhaseAnalyze, task, 1, r.tpl.analyze,
		func(task domain.TaskDescriptor) promptData {
			return promptData{Task: task, Guidance: r.pc.Guidance, Validation: validation}
		})
	if err != nil {
		return "", err
	}

	guidance := ""
	if len(results) == 1 {
		guidance = results[0].Output
		if results[0].Failed() {
			r.engine.logger.Warn(fmt.Sprintf("phase=analyze iteration=%d exit=%d, falling back to raw failure list",
				r.pc.Iteration, results[0].ExitCode))
			guidance = fallbackGuidance(validation)
		}
	}

	if err := writeArtifact(r.layout.GuidancePath(r.pc.Iteration), guidance); err != nil {
		return "", err
	}
	return guidance, nil
}

func fallbackGuidance(validation domain.ValidationResult) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d of %d checks failed:\n", validation.Failed, validation.Total)
	for _, f := range validation.Failures {
		fmt.Fprintf(&buf, "- %s: %s\n", f.Name, f.Message)
	}
	return buf.String()
}

// discardStale removes the plan and check artifacts of every queued task so
// a later iteration regenerates them against current guidance.
func (r *run) discardStale(queue []domain.TaskDescriptor) error {
	var g errgroup.Group
	for _, task := range queue {
		g.Go(func() error {
			paths := []string{
				r.layout.PlanPath(task.Identity),
				r.layout.CheckPath(task.Identity),
			}
			for _, p := range paths {
				if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return zerr.Wrap(err, "failed to discard stale artifact")
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// plansOnDisk loads every task's plan artifact, reporting false unless every
// queued task has both a plan and a check on disk.
func (r *run) plansOnDisk(queue []domain.TaskDescriptor) (map[string]string, bool) {
	if len(queue) == 0 {
		return nil, false
	}
	plans := make(map[string]string, len(queue))
	for _, task := range queue {
		data, err := os.ReadFile(r.layout.PlanPath(task.Identity))
		if err != nil {
			return nil, false
		}
		if _, err := os.Stat(r.layout.CheckPath(task.Identity)); err != nil {
			return nil, false
		}
		plans[task.Identity] = string(data)
	}
	return plans, true
}

func writeArtifact(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create artifact directory")
	}
	//nolint:gosec // Paths come from the artifact layout
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return zerr.Wrap(err, "failed to write artifact")
	}
	return nil
}

func readArtifact(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
