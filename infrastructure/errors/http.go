package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// MinErrorStatusCode is the minimum HTTP status code considered an error.
const MinErrorStatusCode = 400

// HTTPError describes an upstream response with an error status.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error (%s) fetching %s", e.Status, e.URL)
}

// Retryable reports whether the status is worth retrying (429 and 5xx).
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// CheckResponse returns an *HTTPError when resp carries an error status.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode < MinErrorStatusCode {
		return nil
	}

	reqURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		reqURL = resp.Request.URL.String()
	}

	return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, URL: reqURL}
}

// IsRetryableHTTP reports whether err wraps a retryable *HTTPError.
func IsRetryableHTTP(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Retryable()
}
