package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/selfie/internal/adapters/config"     //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/adapters/logger"     //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/adapters/receipts"   //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/adapters/repository" //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/adapters/shell"      //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/adapters/telemetry"  //nolint:depguard // Wired in app layer
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/selfie/internal/engine/installer"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			repository.NodeID,
			shell.NodeID,
			telemetry.NodeID,
			receipts.NodeID,
			installer.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.ReceiptStore](ctx)
	if err != nil {
		return nil, err
	}

	repositories, err := graft.Dep[ports.RepositoryFactory](ctx)
	if err != nil {
		return nil, err
	}

	runners, err := graft.Dep[ports.RunnerFactory](ctx)
	if err != nil {
		return nil, err
	}

	installers, err := graft.Dep[installer.Factory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, tel, store, repositories, runners, installers), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: tel,
	}, nil
}
