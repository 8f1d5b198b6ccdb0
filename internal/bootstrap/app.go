package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	infracontext "github.com/jonesrussell/north-cloud/philosophy/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/config"
	"github.com/jonesrussell/north-cloud/philosophy/internal/metrics"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
	"github.com/jonesrussell/north-cloud/philosophy/internal/wiki"
)

// App holds the wired components shared by every command.
type App struct {
	Config   *config.Config
	Logger   infralogger.Logger
	Cache    *pathcache.Cache
	Source   *wiki.Source
	Engine   *pathfinder.Engine
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// NewApp opens the cache, loads it and builds the source and engine.
func NewApp(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg.Cache, log)
	if err != nil {
		return nil, fmt.Errorf("setup path cache: %w", err)
	}

	cache := pathcache.New(store, log.With(infralogger.String("component", "pathcache")))
	entries := cache.Load(ctx)
	log.Info("Path cache ready",
		infralogger.String("backend", cfg.Cache.Backend),
		infralogger.Int("entries", entries),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)
	metrics.RegisterCacheSize(registry, cache.Len)

	sourceCfg := cfg.Crawler.Source()
	sourceCfg.OnCircuitChange = m.ObserveCircuit
	source, err := wiki.NewSource(sourceCfg, log.With(infralogger.String("component", "wiki")))
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("setup article source: %w", err)
	}

	engine := pathfinder.NewEngine(pathfinder.EngineParams{
		Config:   pathfinder.Config{MaxHops: cfg.Crawler.MaxHops},
		Source:   source,
		Cache:    cache,
		Logger:   log.With(infralogger.String("component", "pathfinder")),
		Observer: m,
	})

	return &App{
		Config:   cfg,
		Logger:   log,
		Cache:    cache,
		Source:   source,
		Engine:   engine,
		Metrics:  m,
		Registry: registry,
	}, nil
}

// Close flushes anything still pending and releases the store. It runs with
// its own deadline so an interrupted command still persists its paths.
func (a *App) Close(ctx context.Context) error {
	flushCtx, cancel := infracontext.WithShutdownTimeout(ctx)
	defer cancel()

	var errs []error
	if err := a.Cache.Flush(flushCtx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close path cache: %w", err))
	}
	return errors.Join(errs...)
}
