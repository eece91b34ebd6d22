package ports

import "go.trai.ch/kcache/internal/core/domain"

// ConfigLoader defines the interface for loading the worker pool configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration at path. A missing file yields the defaults.
	Load(path string) (domain.Config, error)
}

// WorkloadLoader defines the interface for loading a recorded workload.
type WorkloadLoader interface {
	// Load reads and validates the workload trace at path.
	Load(path string) (*domain.Workload, error)
}
