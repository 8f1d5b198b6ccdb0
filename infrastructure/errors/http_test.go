package errors_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/jonesrussell/north-cloud/philosophy/infrastructure/errors"
)

func response(t *testing.T, status int) *http.Response {
	t.Helper()

	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Request:    httptest.NewRequest(http.MethodGet, "https://en.wikipedia.org/wiki/Go", http.NoBody),
	}
}

func TestCheckResponse(t *testing.T) {
	t.Parallel()

	require.NoError(t, infraerrors.CheckResponse(response(t, http.StatusOK)))

	err := infraerrors.CheckResponse(response(t, http.StatusNotFound))
	var httpErr *infraerrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, err.Error(), "https://en.wikipedia.org/wiki/Go")
	assert.False(t, infraerrors.IsRetryableHTTP(err))
}

func TestIsRetryableHTTP(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable} {
		err := infraerrors.WrapWithContext(infraerrors.CheckResponse(response(t, status)), "fetch article")
		assert.True(t, infraerrors.IsRetryableHTTP(err), "status %d", status)
	}
}

func TestWrapWithContext_Nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, infraerrors.WrapWithContext(nil, "ignored"))
	assert.NoError(t, infraerrors.WrapWithContextf(nil, "ignored %d", 1))
}
