// Package api exposes path discovery over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
)

// PathFinder runs a traversal.
type PathFinder interface {
	FindPath(ctx context.Context, start, target string) (*pathfinder.Result, error)
}

// PathLookup reads memoized paths.
type PathLookup interface {
	Get(title string) (domain.Path, bool)
	Len() int
}

// FindPathRequest is the body of POST /find-path.
type FindPathRequest struct {
	StartingURL string `json:"startingUrl" binding:"required"`
	TargetURL   string `json:"targetUrl"`
}

// FindPathResponse is returned for every traversal that produced a path.
type FindPathResponse struct {
	Path    domain.Path    `json:"path"`
	Outcome domain.Outcome `json:"outcome"`
	Cached  bool           `json:"cached"`
	Hops    int            `json:"hops"`
	Warning string         `json:"warning,omitempty"`
}

// ErrorResponse reports a failed traversal with whatever path was walked.
type ErrorResponse struct {
	Error string      `json:"error"`
	Path  domain.Path `json:"path,omitempty"`
}

// Handler serves the path endpoints.
type Handler struct {
	finder        PathFinder
	paths         PathLookup
	defaultTarget string
	log           infralogger.Logger
}

// NewHandler creates a handler. Requests without a target use defaultTarget.
func NewHandler(finder PathFinder, paths PathLookup, defaultTarget string, log infralogger.Logger) *Handler {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Handler{finder: finder, paths: paths, defaultTarget: defaultTarget, log: log}
}

// FindPath handles POST /find-path.
func (h *Handler) FindPath(c *gin.Context) {
	ctx := c.Request.Context()
	log := infralogger.FromContext(ctx, h.log)

	var req FindPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("Invalid request body", infralogger.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	target := strings.TrimSpace(req.TargetURL)
	if target == "" {
		target = h.defaultTarget
	}

	log.Info("Finding path",
		infralogger.String("start", req.StartingURL),
		infralogger.String("target", target),
	)

	res, err := h.finder.FindPath(ctx, strings.TrimSpace(req.StartingURL), target)
	if err == nil {
		c.JSON(http.StatusOK, toResponse(res))
		return
	}

	var path domain.Path
	if res != nil {
		path = res.Path
	}

	switch {
	case errors.Is(err, domain.ErrInvalidLocator):
		log.Debug("Rejected locator", infralogger.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid article URL"})
	case onlyCacheFailure(res, err):
		log.Error("Path found but cache was not saved", infralogger.Error(err))
		resp := toResponse(res)
		resp.Warning = "path cache could not be saved"
		c.JSON(http.StatusOK, resp)
	default:
		log.Error("Failed to find path",
			infralogger.Strings("path", path),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to find path", Path: path})
	}
}

// CachedPath handles GET /paths/:title.
func (h *Handler) CachedPath(c *gin.Context) {
	title := c.Param("title")
	path, ok := h.paths.Get(title)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No cached path"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title, "path": path})
}

// CacheStats handles GET /paths.
func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.paths.Len()})
}

func toResponse(res *pathfinder.Result) FindPathResponse {
	return FindPathResponse{
		Path:    res.Path,
		Outcome: res.Outcome,
		Cached:  res.Cached,
		Hops:    res.Hops,
	}
}

// onlyCacheFailure reports a traversal that finished but whose cache flush failed.
func onlyCacheFailure(res *pathfinder.Result, err error) bool {
	return res != nil &&
		res.Outcome != domain.OutcomeError &&
		errors.Is(err, domain.ErrCacheIO) &&
		!errors.Is(err, domain.ErrFetch) &&
		!errors.Is(err, domain.ErrResolution)
}
