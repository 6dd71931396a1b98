package ports

import "go.trai.ch/stale/internal/core/domain"

// ConfigLoader defines the interface for loading the workspace definition.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the workspace file found at or above path and returns the
	// workspace with its validated project graph. path may also name the file itself.
	Load(path string) (*domain.Workspace, error)
}
