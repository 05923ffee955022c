package installer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/selfie/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
)

// NodeID is the unique identifier for the installer Graft node.
const NodeID graft.ID = "engine.installer"

// Factory builds a Manager once the configuration and the adapters it selects are known.
type Factory func(
	cfg domain.AppConfig,
	repo ports.PackageRepository,
	runner ports.CommandRunner,
	tel ports.Telemetry,
) *Manager

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
		},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return func(
				cfg domain.AppConfig,
				repo ports.PackageRepository,
				runner ports.CommandRunner,
				tel ports.Telemetry,
			) *Manager {
				return New(cfg, repo, runner, tel, log)
			}, nil
		},
	})
}
