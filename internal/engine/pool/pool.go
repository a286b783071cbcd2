// Package pool implements the bounded-concurrency scheduler that maps a
// task queue onto external worker processes.
package pool

import (
	"context"
	"sort"
	"time"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/zerr"
)

// BuildSpec builds the job spec for one task. Builders are pure functions
// of the task and whatever phase context they close over, so phases can be
// tested without launching real processes.
type BuildSpec func(task domain.TaskDescriptor) (domain.JobSpec, error)

// Pool schedules worker invocations with bounded concurrency.
//
// The pool observes outcomes, it does not judge them: a non-zero exit code
// is recorded as data and never becomes an error. Its key contract is order
// fidelity: for N queued tasks it returns exactly N results, sorted by
// original queue position, regardless of completion order.
type Pool struct {
	launcher ports.Launcher
	logger   ports.Logger
	tracer   ports.Tracer
}

// New creates a new Pool.
func New(launcher ports.Launcher, logger ports.Logger, tracer ports.Tracer) *Pool {
	return &Pool{
		launcher: launcher,
		logger:   logger,
		tracer:   tracer,
	}
}

// handle tracks one in-flight worker invocation. A handle owns its process
// exclusively from launch until its result is recorded.
type handle struct {
	spec       domain.JobSpec
	proc       ports.Process
	task       domain.TaskDescriptor
	span       ports.Span
	startedAt  time.Time
	deadline   time.Time
	queueIndex int
}

// Run executes one job per queued task, at most workers at a time, and
// returns the results in queue order.
//
// A builder or launch failure produces a synthetic failing result for that
// task only; the rest of the queue is unaffected. A job whose spec carries a
// timeout is killed at its deadline and recorded as timed out. On context
// cancellation all running processes are killed, every task still owed a
// result gets a synthetic one, and the context error is returned alongside
// the results.
func (p *Pool) Run(
	ctx context.Context,
	queue []domain.TaskDescriptor,
	workers int,
	build BuildSpec,
	pollInterval time.Duration,
) ([]domain.JobResult, error) {
	if workers <= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidWorkerCount, "pool cannot run"), "workers", workers)
	}
	if pollInterval <= 0 {
		pollInterval = domain.DefaultPollInterval
	}

	labels := make([]string, len(queue))
	for i, task := range queue {
		labels[i] = task.Identity
	}
	p.tracer.EmitPlan(ctx, labels)

	results := make([]domain.JobResult, 0, len(queue))
	running := make([]*handle, 0, workers)
	next := 0

	for next < len(queue) || len(running) > 0 {
		// Cancellation must win over a queue that keeps making progress, so
		// check it before filling slots rather than only in the idle sleep.
		if ctx.Err() != nil {
			p.abort(running, queue, next, &results)
			sortResults(results)
			return results, zerr.Wrap(ctx.Err(), domain.ErrRunAborted.Error())
		}

		// Fill free slots in queue order.
		for next < len(queue) && len(running) < workers {
			task := queue[next]
			idx := next
			next++

			spec, err := build(task)
			if err != nil {
				p.logger.Warn("job spec builder failed for " + task.Identity + ": " + err.Error())
				results = append(results, synthetic(task, idx, task.Identity, "spec builder failed: "+err.Error()))
				continue
			}

			h, ok := p.launch(ctx, spec, task, idx, &results)
			if ok {
				running = append(running, h)
			}
		}

		// Scan for completions. In-place filter keeps slot order stable.
		progressed := false
		keep := running[:0]
		for _, h := range running {
			if p.reap(h, &results) {
				progressed = true
			} else {
				keep = append(keep, h)
			}
		}
		running = keep

		if progressed {
			continue
		}
		if next >= len(queue) && len(running) == 0 {
			break
		}

		select {
		case <-ctx.Done():
			p.abort(running, queue, next, &results)
			sortResults(results)
			return results, zerr.Wrap(ctx.Err(), domain.ErrRunAborted.Error())
		case <-time.After(pollInterval):
		}
	}

	sortResults(results)
	return results, nil
}

func (p *Pool) launch(
	ctx context.Context,
	spec domain.JobSpec,
	task domain.TaskDescriptor,
	idx int,
	results *[]domain.JobResult,
) (*handle, bool) {
	_, span := p.tracer.Start(ctx, spec.Label)

	proc, err := p.launcher.Launch(ctx, spec)
	if err != nil {
		p.logger.Warn("launch failed for " + spec.Label + ": " + err.Error())
		span.RecordError(err)
		span.End()
		*results = append(*results, synthetic(task, idx, spec.Label, "launch failed: "+err.Error()))
		return nil, false
	}

	now := time.Now()
	h := &handle{
		spec:       spec,
		proc:       proc,
		task:       task,
		span:       span,
		startedAt:  now,
		queueIndex: idx,
	}
	if spec.Timeout > 0 {
		h.deadline = now.Add(spec.Timeout)
	}
	return h, true
}

// reap collects the handle's result if its process has exited or blown its
// deadline. Returns true when a result was recorded and the handle is done.
func (p *Pool) reap(h *handle, results *[]domain.JobResult) bool {
	exited, code, pollErr := h.proc.Poll()
	now := time.Now()

	if !exited {
		if h.deadline.IsZero() || now.Before(h.deadline) {
			return false
		}

		if err := h.proc.Kill(); err != nil {
			p.logger.Warn("failed to kill timed out job " + h.spec.Label + ": " + err.Error())
		}
		p.logger.Warn("job " + h.spec.Label + " exceeded its deadline")

		h.span.SetAttribute("timed_out", true)
		h.span.RecordError(zerr.With(zerr.New("job deadline exceeded"), "label", h.spec.Label))
		h.span.End()

		*results = append(*results, domain.JobResult{
			ExitCode:   domain.ExitInternal,
			Duration:   now.Sub(h.startedAt),
			Output:     h.proc.Output(),
			Label:      h.spec.Label,
			QueueIndex: h.queueIndex,
			Task:       h.task,
			TimedOut:   true,
		})
		return true
	}

	if pollErr != nil {
		p.logger.Warn("wait failed for job " + h.spec.Label + ": " + pollErr.Error())
	}

	res := domain.JobResult{
		ExitCode:   code,
		Duration:   now.Sub(h.startedAt),
		Output:     h.proc.Output(),
		Label:      h.spec.Label,
		QueueIndex: h.queueIndex,
		Task:       h.task,
	}

	h.span.SetAttribute("exit_code", code)
	if res.Failed() {
		h.span.RecordError(zerr.With(zerr.New("job failed"), "exit_code", code))
	}
	h.span.End()

	*results = append(*results, res)
	return true
}

// abort kills everything still running and records synthetic results for
// every task that has not produced one, so the N-results contract holds
// even on cancellation.
func (p *Pool) abort(
	running []*handle,
	queue []domain.TaskDescriptor,
	next int,
	results *[]domain.JobResult,
) {
	for _, h := range running {
		if err := h.proc.Kill(); err != nil {
			p.logger.Warn("failed to kill job " + h.spec.Label + " on abort: " + err.Error())
		}
		h.span.RecordError(domain.ErrRunAborted)
		h.span.End()
		*results = append(*results, domain.JobResult{
			ExitCode:   domain.ExitInternal,
			Duration:   time.Since(h.startedAt),
			Output:     h.proc.Output(),
			Label:      h.spec.Label,
			QueueIndex: h.queueIndex,
			Task:       h.task,
		})
	}
	for i := next; i < len(queue); i++ {
		*results = append(*results, synthetic(queue[i], i, queue[i].Identity, "run aborted before launch"))
	}
}

func synthetic(task domain.TaskDescriptor, idx int, label, output string) domain.JobResult {
	return domain.JobResult{
		ExitCode:   domain.ExitInternal,
		Output:     output,
		Label:      label,
		QueueIndex: idx,
		Task:       task,
	}
}

func sortResults(results []domain.JobResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].QueueIndex < results[j].QueueIndex
	})
}
