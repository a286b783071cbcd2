package loop

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mend/internal/adapters/harness"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/adapters/report"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/adapters/state"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mend/internal/core/ports"
	"go.trai.ch/mend/internal/engine/pool"
)

// NodeID is the unique identifier for the loop engine Graft node.
const NodeID graft.ID = "engine.loop"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			pool.NodeID,
			harness.NodeID,
			state.NodeID,
			report.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			p, err := graft.Dep[*pool.Pool](ctx)
			if err != nil {
				return nil, err
			}

			validator, err := graft.Dep[ports.Validator](ctx)
			if err != nil {
				return nil, err
			}

			states, err := graft.Dep[ports.RunStateStore](ctx)
			if err != nil {
				return nil, err
			}

			reporter, err := graft.Dep[ports.Reporter](ctx)
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

			return NewEngine(p, validator, states, reporter, log, tracer), nil
		},
	})
}
