package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kcache/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/adapters/executor"  //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/adapters/trace"     //nolint:depguard // Wired in app layer
	"go.trai.ch/kcache/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			trace.NodeID,
			executor.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			config.NodeID,
			trace.NodeID,
			executor.NodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	workloadLoader, err := graft.Dep[ports.WorkloadLoader](ctx)
	if err != nil {
		return nil, err
	}

	exec, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(configLoader, workloadLoader, exec, tracer, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	workloadLoader, err := graft.Dep[ports.WorkloadLoader](ctx)
	if err != nil {
		return nil, err
	}

	exec, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:            a,
		Logger:         log,
		ConfigLoader:   configLoader,
		WorkloadLoader: workloadLoader,
		Executor:       exec,
	}, nil
}
