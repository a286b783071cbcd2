package state

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mend/internal/core/ports"
)

// NodeID is the unique identifier for the run state store Graft node.
const NodeID graft.ID = "adapter.state_store"

func init() {
	graft.Register(graft.Node[ports.RunStateStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RunStateStore, error) {
			return NewStore(), nil
		},
	})
}
