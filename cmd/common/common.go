// Package common holds the setup shared by every subcommand.
package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/philosophy/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/philosophy/internal/config"
)

// Viper keys bound by the root command.
const (
	KeyConfig       = "config"
	KeyDebug        = "app.debug"
	KeyCacheBackend = "cache.backend"
)

// Version is the build version reported in logs and /health.
var Version = "dev"

// LoadConfig loads the typed configuration and applies flag overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := bootstrap.LoadConfig(viper.GetString(KeyConfig))
	if err != nil {
		return nil, err
	}
	if err = ApplyOverrides(cfg, viper.GetViper()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides layers command-line values from v onto cfg and revalidates.
func ApplyOverrides(cfg *config.Config, v *viper.Viper) error {
	if v.GetBool(KeyDebug) {
		cfg.Debug = true
	}
	if backend := strings.ToLower(strings.TrimSpace(v.GetString(KeyCacheBackend))); backend != "" {
		cfg.Cache.Backend = backend
		config.SetDefaults(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Setup loads configuration and wires the application.
func Setup(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	log, err := bootstrap.CreateLogger(cfg, Version)
	if err != nil {
		return nil, err
	}

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return app, nil
}

// Teardown persists pending paths, releases the store and flushes the logger.
func Teardown(ctx context.Context, app *bootstrap.App) error {
	err := app.Close(ctx)
	_ = app.Logger.Sync()
	return err
}
