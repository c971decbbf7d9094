package ports

import "go.trai.ch/qcache/internal/core/domain"

// SettingsLoader defines the interface for loading process settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type SettingsLoader interface {
	// Load discovers the settings file from cwd upwards and returns the parsed settings
	// together with the path they were read from. The path is empty when defaults were used.
	Load(cwd string) (*domain.Settings, string, error)

	// LoadFile parses the settings file at path.
	LoadFile(path string) (*domain.Settings, error)

	// Defaults returns the settings in effect when no file exists: the built-in
	// defaults with environment overrides applied.
	Defaults() (*domain.Settings, error)
}
