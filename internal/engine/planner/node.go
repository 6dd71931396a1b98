package planner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/stale/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stale/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stale/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stale/internal/adapters/record" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/stale/internal/core/ports"
)

// NodeID is the unique identifier for the planner Graft node.
const NodeID graft.ID = "engine.planner"

func init() {
	graft.Register(graft.Node[*Planner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.ProberNodeID, record.NodeID, fs.HasherNodeID, cas.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Planner, error) {
			prober, err := graft.Dep[ports.Prober](ctx)
			if err != nil {
				return nil, err
			}
			records, err := graft.Dep[ports.RecordStore](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			stamps, err := graft.Dep[ports.StampStore](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(prober, records, hasher, stamps, log), nil
		},
	})
}
