package pool

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mend/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/adapters/proc"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/core/ports"
)

// NodeID is the unique identifier for the pool Graft node.
const NodeID graft.ID = "engine.pool"

func init() {
	graft.Register(graft.Node[*Pool]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			proc.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Pool, error) {
			launcher, err := graft.Dep[ports.Launcher](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return New(launcher, log, tracer), nil
		},
	})
}
