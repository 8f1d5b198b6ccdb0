package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	inframetrics "github.com/jonesrussell/north-cloud/philosophy/infrastructure/metrics"
	"github.com/jonesrussell/north-cloud/philosophy/internal/api"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
)

const (
	startURL  = "https://en.wikipedia.org/wiki/Start"
	targetURL = "https://en.wikipedia.org/wiki/Philosophy"
)

type MockPathFinder struct {
	mock.Mock
}

func (m *MockPathFinder) FindPath(ctx context.Context, start, target string) (*pathfinder.Result, error) {
	args := m.Called(ctx, start, target)
	res, _ := args.Get(0).(*pathfinder.Result)
	return res, args.Error(1)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T, finder api.PathFinder, cache *pathcache.Cache, staticDir string) *gin.Engine {
	t.Helper()

	reg := prometheus.NewRegistry()
	router := gin.New()
	api.SetupRoutes(api.RouteDeps{
		Handler:     api.NewHandler(finder, cache, targetURL, nil),
		HTTPMetrics: inframetrics.NewHTTPMetrics(reg, "test"),
		Gatherer:    reg,
		StaticDir:   staticDir,
	})(router)
	return router
}

func emptyCache() *pathcache.Cache {
	return pathcache.New(pathcache.NewMemoryStore(nil), nil)
}

func postFindPath(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/find-path", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestFindPath_Success(t *testing.T) {
	t.Parallel()

	finder := new(MockPathFinder)
	finder.On("FindPath", mock.Anything, startURL, targetURL).Return(&pathfinder.Result{
		Path:    domain.Path{"Start", "Mid", "Philosophy"},
		Outcome: domain.OutcomeSuccess,
		Hops:    2,
	}, nil)
	router := newRouter(t, finder, emptyCache(), "")

	w := postFindPath(router, fmt.Sprintf(`{"startingUrl":%q,"targetUrl":%q}`, startURL, targetURL))

	require.Equal(t, http.StatusOK, w.Code)
	var resp api.FindPathResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.Path{"Start", "Mid", "Philosophy"}, resp.Path)
	assert.Equal(t, domain.OutcomeSuccess, resp.Outcome)
	assert.Equal(t, 2, resp.Hops)
	assert.Empty(t, resp.Warning)
	finder.AssertExpectations(t)
}

func TestFindPath_DefaultsTarget(t *testing.T) {
	t.Parallel()

	finder := new(MockPathFinder)
	finder.On("FindPath", mock.Anything, startURL, targetURL).Return(&pathfinder.Result{
		Path:    domain.Path{"Start", "Philosophy"},
		Outcome: domain.OutcomeSuccess,
		Cached:  true,
	}, nil)
	router := newRouter(t, finder, emptyCache(), "")

	w := postFindPath(router, fmt.Sprintf(`{"startingUrl":%q}`, startURL))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path":["Start","Philosophy"],"outcome":"success","cached":true,"hops":0}`, w.Body.String())
	finder.AssertExpectations(t)
}

func TestFindPath_InvalidBody(t *testing.T) {
	t.Parallel()

	finder := new(MockPathFinder)
	router := newRouter(t, finder, emptyCache(), "")

	w := postFindPath(router, `{"targetUrl":"x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	finder.AssertNotCalled(t, "FindPath", mock.Anything, mock.Anything, mock.Anything)
}

func TestFindPath_Errors(t *testing.T) {
	t.Parallel()

	partial := &pathfinder.Result{Path: domain.Path{"Start", "Mid"}, Outcome: domain.OutcomeError, Hops: 1}
	found := &pathfinder.Result{Path: domain.Path{"Start", "Philosophy"}, Outcome: domain.OutcomeSuccess, Hops: 1}

	tests := []struct {
		name     string
		result   *pathfinder.Result
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "fetch failure keeps partial path",
			result:   partial,
			err:      fmt.Errorf("%w: timeout", domain.ErrFetch),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Failed to find path","path":["Start","Mid"]}`,
		},
		{
			name:     "resolution failure without path",
			result:   &pathfinder.Result{Outcome: domain.OutcomeError},
			err:      fmt.Errorf("%w: no location", domain.ErrResolution),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Failed to find path"}`,
		},
		{
			name:     "invalid locator",
			result:   &pathfinder.Result{Outcome: domain.OutcomeError},
			err:      fmt.Errorf("%w: %w", domain.ErrFetch, domain.ErrInvalidLocator),
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Invalid article URL"}`,
		},
		{
			name:     "cache failure still returns path",
			result:   found,
			err:      fmt.Errorf("%w: disk full", domain.ErrCacheIO),
			wantCode: http.StatusOK,
			wantBody: `{"path":["Start","Philosophy"],"outcome":"success","cached":false,"hops":1,"warning":"path cache could not be saved"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			finder := new(MockPathFinder)
			finder.On("FindPath", mock.Anything, startURL, targetURL).Return(tt.result, tt.err)
			router := newRouter(t, finder, emptyCache(), "")

			w := postFindPath(router, fmt.Sprintf(`{"startingUrl":%q}`, startURL))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestCachedPath(t *testing.T) {
	t.Parallel()

	cache := emptyCache()
	cache.Put(map[string]domain.Path{"Mid": {"Mid", "Philosophy"}})
	router := newRouter(t, new(MockPathFinder), cache, "")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paths/Mid", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Mid","path":["Mid","Philosophy"]}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paths/Unknown", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/paths", http.NoBody))
	assert.JSONEq(t, `{"entries":1}`, w.Body.String())
}

func TestStaticIndexAndMetrics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>wikipath</h1>"), 0o600))
	router := newRouter(t, new(MockPathFinder), emptyCache(), dir)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wikipath")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestNoStaticDirMeansNoIndex(t *testing.T) {
	t.Parallel()

	router := newRouter(t, new(MockPathFinder), emptyCache(), t.TempDir())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
