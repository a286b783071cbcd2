package harness

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mend/internal/adapters/logger"
	"go.trai.ch/mend/internal/core/ports"
)

// NodeID is the unique identifier for the validation harness Graft node.
const NodeID graft.ID = "adapter.harness_validator"

func init() {
	graft.Register(graft.Node[ports.Validator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Validator, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewValidator(log), nil
		},
	})
}
