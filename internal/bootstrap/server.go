package bootstrap

import (
	infragin "github.com/jonesrussell/north-cloud/philosophy/infrastructure/gin"
	inframetrics "github.com/jonesrussell/north-cloud/philosophy/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/philosophy/internal/api"
)

// NewHTTPServer builds the HTTP server around app.
func NewHTTPServer(app *App, version string) *infragin.Server {
	cfg := app.Config
	log := app.Logger

	handler := api.NewHandler(app.Engine, app.Cache, cfg.Crawler.Target, log)

	return infragin.NewServerBuilder(ServiceName, cfg.Server.Port).
		WithHost(cfg.Server.Host).
		WithLogger(log).
		WithDebug(cfg.Debug).
		WithVersion(version).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithHealthCheck("path_cache",
			infragin.PingHealthChecker("path_cache", infragin.HealthStatusDegraded, app.Cache.Ping)).
		WithRoutes(api.SetupRoutes(api.RouteDeps{
			Handler:     handler,
			HTTPMetrics: inframetrics.NewHTTPMetrics(app.Registry, ServiceName),
			Gatherer:    app.Registry,
			StaticDir:   cfg.Server.StaticDir,
		})).
		Build()
}
