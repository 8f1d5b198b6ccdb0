package api

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	inframetrics "github.com/jonesrussell/north-cloud/philosophy/infrastructure/metrics"
)

const indexFile = "index.html"

// RouteDeps holds what the routes need.
type RouteDeps struct {
	Handler     *Handler
	HTTPMetrics *inframetrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
	// StaticDir is served at / when it contains an index page.
	StaticDir string
}

// SetupRoutes returns the route registration function for the server builder.
func SetupRoutes(deps RouteDeps) func(*gin.Engine) {
	return func(router *gin.Engine) {
		if deps.HTTPMetrics != nil {
			router.Use(deps.HTTPMetrics.Middleware())
		}

		router.POST("/find-path", deps.Handler.FindPath)
		router.GET("/paths", deps.Handler.CacheStats)
		router.GET("/paths/:title", deps.Handler.CachedPath)
		router.GET("/metrics", inframetrics.Handler(deps.Gatherer))

		registerStatic(router, deps.StaticDir)
	}
}

func registerStatic(router *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	index := filepath.Join(dir, indexFile)
	if info, err := os.Stat(index); err != nil || info.IsDir() {
		return
	}
	router.StaticFile("/", index)
	router.Static("/assets", dir)
}
