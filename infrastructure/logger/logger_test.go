package logger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
)

func TestNew_WritesToOutputPath(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "app.log")
	log, err := logger.New(logger.Config{Level: "debug", Format: "console", OutputPaths: []string{out}})
	require.NoError(t, err)

	log.With(logger.String("service", "philosophy")).Debug("hello", logger.Int("hops", 3))
	require.NoError(t, log.Sync())

	assert.FileExists(t, out)
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg logger.Config
	cfg.SetDefaults()

	assert.Equal(t, logger.DefaultLevel, cfg.Level)
	assert.Equal(t, logger.DefaultFormat, cfg.Format)
	assert.Equal(t, logger.DefaultOutputPaths, cfg.OutputPaths)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	stored := logger.NewNop()
	fallback, err := logger.New(logger.Config{OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}})
	require.NoError(t, err)

	ctx := logger.WithContext(context.Background(), stored)
	assert.Same(t, stored, logger.FromContext(ctx, fallback))
	assert.Same(t, fallback, logger.FromContext(context.Background(), fallback))
	assert.NotNil(t, logger.FromContext(context.Background(), nil))
}
