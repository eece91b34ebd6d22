package trace

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kcache/internal/adapters/logger"
	"go.trai.ch/kcache/internal/core/ports"
)

// NodeID is the unique identifier for the trace loader Graft node.
const NodeID graft.ID = "adapter.trace_loader"

func init() {
	graft.Register(graft.Node[ports.WorkloadLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.WorkloadLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
