// Package bootstrap wires configuration, storage, the article source and the
// engine into a runnable application.
package bootstrap

import (
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/philosophy/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/config"
)

// ServiceName identifies this service in logs, health and metrics.
const ServiceName = "wikipath"

// DefaultConfigPath is used when neither a flag nor CONFIG_PATH names a file.
const DefaultConfigPath = "config.yml"

// LoadConfig loads and validates the configuration at path. An empty path
// falls back to CONFIG_PATH and then DefaultConfigPath.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(DefaultConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates the service logger.
func CreateLogger(cfg *config.Config, version string) (infralogger.Logger, error) {
	level := cfg.Logging.Level
	if cfg.Debug {
		level = "debug"
	}
	log, err := infralogger.New(infralogger.Config{
		Level:       level,
		Format:      cfg.Logging.Format,
		Development: cfg.Debug || cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		infralogger.String("service", ServiceName),
		infralogger.String("version", version),
	), nil
}
