package progrock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mend/internal/adapters/telemetry/progrock"
	"go.trai.ch/zerr"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_SpanLifecycle(t *testing.T) {
	recorder := progrock.New()

	ctx, span := recorder.Start(context.Background(), "apply:pkg-a")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	n, err := span.Write([]byte("worker output\n"))
	assert.NoError(t, err)
	assert.Equal(t, 14, n)

	span.SetAttribute("exit_code", 1)
	span.RecordError(zerr.New("job failed"))
	span.End()
}

func TestRecorder_EmitPlan(t *testing.T) {
	recorder := progrock.New()
	recorder.EmitPlan(context.Background(), []string{"apply:a", "apply:b"})
}
