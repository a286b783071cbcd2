// Package proc provides the os/exec worker launcher adapter.
package proc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"go.trai.ch/mend/internal/core/domain"
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/zerr"
)

// Launcher implements ports.Launcher using os/exec.
//
// Worker invocation contract: the argv is the spec's command, followed by
// the path of a file holding the payload text, followed by "--model" and
// "--context" flags when configured. The child's combined output is teed to
// the spec's log path and buffered for the JobResult.
type Launcher struct {
	logger ports.Logger
}

// NewLauncher creates a new Launcher.
func NewLauncher(logger ports.Logger) *Launcher {
	return &Launcher{logger: logger}
}

// Launch starts the worker described by spec.
func (l *Launcher) Launch(ctx context.Context, spec domain.JobSpec) (ports.Process, error) {
	if len(spec.Command) == 0 {
		return nil, zerr.With(zerr.New("job spec has no command"), "label", spec.Label)
	}

	payloadPath, err := writePayload(spec)
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, len(spec.Command)+2+2*len(spec.ExtraContext)+3)
	argv = append(argv, spec.Command...)
	argv = append(argv, payloadPath)
	if spec.Model != "" {
		argv = append(argv, "--model", spec.Model)
	}
	for _, dir := range spec.ExtraContext {
		argv = append(argv, "--context", dir)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // worker command is configured by the operator
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}

	buf := &lockedBuffer{}
	var logFile *os.File
	out := io.Writer(buf)
	if spec.LogPath != "" {
		logFile, err = os.Create(spec.LogPath) //nolint:gosec // log path is derived from the artifact layout
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create job log file"), "path", spec.LogPath)
		}
		out = io.MultiWriter(buf, logFile)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to start worker process"), "label", spec.Label)
	}

	p := &process{
		cmd:  cmd,
		buf:  buf,
		done: make(chan error, 1),
	}
	go func() {
		waitErr := cmd.Wait()
		if logFile != nil {
			_ = logFile.Close()
		}
		p.done <- waitErr
	}()

	return p, nil
}

// writePayload stores the payload next to the log so a failed job can be
// reproduced by hand. Falls back to a temp file when no log path is set.
func writePayload(spec domain.JobSpec) (string, error) {
	if spec.LogPath == "" {
		f, err := os.CreateTemp("", "mend-payload-*.md")
		if err != nil {
			return "", zerr.Wrap(err, "failed to create payload file")
		}
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(spec.Payload); err != nil {
			return "", zerr.Wrap(err, "failed to write payload file")
		}
		return f.Name(), nil
	}

	if err := os.MkdirAll(filepath.Dir(spec.LogPath), 0o750); err != nil {
		return "", zerr.Wrap(err, "failed to create job log directory")
	}
	path := spec.LogPath + ".payload"
	if err := os.WriteFile(path, []byte(spec.Payload), 0o644); err != nil { //nolint:gosec // payload is not secret
		return "", zerr.With(zerr.Wrap(err, "failed to write payload file"), "path", path)
	}
	return path, nil
}

// process implements ports.Process for one child process. Poll and Kill are
// only ever called from the pool's controlling goroutine.
type process struct {
	cmd      *exec.Cmd
	buf      *lockedBuffer
	done     chan error
	exited   bool
	exitCode int
}

// Poll reports whether the process has exited, without blocking.
func (p *process) Poll() (bool, int, error) {
	if p.exited {
		return true, p.exitCode, nil
	}

	select {
	case waitErr := <-p.done:
		p.exited = true
		p.exitCode = 0
		if waitErr != nil {
			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				p.exitCode = exitErr.ExitCode()
			} else {
				p.exitCode = domain.ExitInternal
				return true, p.exitCode, zerr.Wrap(waitErr, "worker process wait failed")
			}
		}
		return true, p.exitCode, nil
	default:
		return false, 0, nil
	}
}

// Kill forcibly terminates the process.
func (p *process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return zerr.Wrap(err, "failed to kill worker process")
	}
	return nil
}

// Output returns the captured combined output.
func (p *process) Output() string {
	return p.buf.String()
}

// lockedBuffer guards the output buffer: the child's writer goroutines race
// with best-effort Output reads before exit.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
