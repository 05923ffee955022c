package ports

import "go.trai.ch/selfie/internal/core/domain"

//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks

// ConfigLoader builds the effective application configuration.
type ConfigLoader interface {
	// Load merges defaults, the optional config file, the environment and overrides, then validates the result.
	Load(overrides domain.ConfigOverrides) (domain.AppConfig, error)
}
