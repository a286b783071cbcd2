package ports

import (
	"context"

	"go.trai.ch/mend/internal/core/domain"
)

// Validator invokes the external validation harness once per iteration.
// The harness is an opaque collaborator: only the aggregate counts and the
// failure list of its report are consumed.
//
//go:generate mockgen -source=validator.go -destination=mocks/mock_validator.go -package=mocks
type Validator interface {
	Run(ctx context.Context, cfg domain.ValidationConfig, workDir string) (domain.ValidationResult, error)
}
