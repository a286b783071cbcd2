package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/mend/internal/core/domain"
)

func TestValidationResult_Converged(t *testing.T) {
	assert.True(t, domain.ValidationResult{Total: 3, Passed: 3}.Converged())
	assert.False(t, domain.ValidationResult{Total: 3, Passed: 2, Failed: 1}.Converged())

	// An empty harness run is not a pass.
	assert.False(t, domain.ValidationResult{}.Converged())
}

func TestJobResult_Failed(t *testing.T) {
	assert.False(t, domain.JobResult{ExitCode: 0}.Failed())
	assert.True(t, domain.JobResult{ExitCode: 1}.Failed())
	assert.True(t, domain.JobResult{ExitCode: domain.ExitInternal}.Failed())
}

func TestRunReport_FinalValidation(t *testing.T) {
	var r domain.RunReport
	_, ok := r.FinalValidation()
	assert.False(t, ok)

	r.Iterations = []domain.IterationState{
		{Iteration: 1, Validation: domain.ValidationResult{Total: 2, Failed: 2}},
		{Iteration: 2, Validation: domain.ValidationResult{Total: 2, Passed: 2}},
	}
	final, ok := r.FinalValidation()
	assert.True(t, ok)
	assert.True(t, final.Converged())
}
