package ports

import "go.trai.ch/mend/internal/core/domain"

// ConfigLoader loads the run configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory,
	// normalized with defaults applied.
	Load(cwd string) (*domain.Config, error)
}
