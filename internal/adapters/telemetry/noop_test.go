package telemetry_test

import (
	"context"
	"testing"

	"go.trai.ch/mend/internal/adapters/telemetry"
	"go.trai.ch/zerr"
)

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx, span := tracer.Start(context.Background(), "noop")
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	n, err := span.Write([]byte("abc"))
	if err != nil || n != 3 {
		t.Errorf("Write = (%d, %v), want (3, nil)", n, err)
	}

	// None of these should panic.
	span.SetAttribute("k", "v")
	span.RecordError(zerr.New("ignored"))
	span.End()
	tracer.EmitPlan(ctx, []string{"a"})
}
