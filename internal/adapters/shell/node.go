package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/selfie/internal/adapters/logger"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
)

// NodeID is the unique identifier for the command runner Graft node.
const NodeID graft.ID = "adapter.runner"

func init() {
	graft.Register(graft.Node[ports.RunnerFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.RunnerFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}

// NewFactory returns a ports.RunnerFactory that picks the runner named by cfg.Shell.
func NewFactory(log ports.Logger) ports.RunnerFactory {
	return func(cfg domain.AppConfig) ports.CommandRunner {
		if cfg.Shell == domain.ShellBuiltin {
			return NewBuiltinRunner(log, cfg.CommandTimeout)
		}
		return NewRunner(log, cfg.CommandTimeout)
	}
}
