package proc

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mend/internal/adapters/logger"
	"go.trai.ch/mend/internal/core/ports"
)

// NodeID is the unique identifier for the process launcher Graft node.
const NodeID graft.ID = "adapter.proc_launcher"

func init() {
	graft.Register(graft.Node[ports.Launcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Launcher, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLauncher(log), nil
		},
	})
}
