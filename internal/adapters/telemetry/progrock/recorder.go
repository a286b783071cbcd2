// Package progrock provides the Progrock implementation of the telemetry adapter.
package progrock

import (
	"context"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/mend/internal/core/ports"
)

// Recorder implements ports.Tracer using the progrock library. Every span
// becomes a vertex on the tape, so job output and completion status are
// attributable per worker invocation.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() ports.Tracer {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start starts recording a new vertex.
func (r *Recorder) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &Span{vertex: v}
}

// EmitPlan records the planned job labels as a completed vertex.
func (r *Recorder) EmitPlan(_ context.Context, labels []string) {
	v := r.rec.Vertex(digest.FromString("plan"), "plan")
	for _, label := range labels {
		_, _ = fmt.Fprintln(v.Stdout(), label)
	}
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Span implements ports.Span wrapping *progrock.VertexRecorder.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write captures output onto the vertex.
func (s *Span) Write(p []byte) (n int, err error) {
	return s.vertex.Stdout().Write(p)
}

// RecordError records an error; the vertex is marked failed on End.
func (s *Span) RecordError(err error) {
	s.err = err
}

// SetAttribute records a key-value pair on the vertex output.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// End completes the vertex, carrying any recorded error.
func (s *Span) End() {
	s.vertex.Done(s.err)
}
