// Package http provides the shared outbound HTTP client.
package http

import (
	"errors"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxIdleConnsPerHost is the default idle pool size per host.
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is the default idle connection timeout.
	DefaultIdleConnTimeout = 90 * time.Second
	// DefaultTLSHandshakeTimeout is the default TLS handshake timeout.
	DefaultTLSHandshakeTimeout = 10 * time.Second
	// DefaultMaxRedirects is the default redirect hop limit.
	DefaultMaxRedirects = 5
)

// ErrTooManyRedirects is returned when the redirect hop limit is exceeded.
var ErrTooManyRedirects = errors.New("too many redirects")

// ClientConfig configures an HTTP client.
type ClientConfig struct {
	// Timeout bounds a whole request including the body read.
	Timeout time.Duration
	// MaxIdleConnsPerHost bounds the keep-alive pool per host.
	MaxIdleConnsPerHost int
	// MaxRedirects is the redirect hop limit. Negative disables following.
	MaxRedirects int
	// UserAgent is sent on every request that does not set one.
	UserAgent string
}

// NewClient creates an HTTP client with the given configuration.
// A nil cfg uses defaults.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	perHost := cfg.MaxIdleConnsPerHost
	if perHost == 0 {
		perHost = DefaultMaxIdleConnsPerHost
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = DefaultMaxRedirects
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = perHost
	transport.IdleConnTimeout = DefaultIdleConnTimeout
	transport.TLSHandshakeTimeout = DefaultTLSHandshakeTimeout

	var rt http.RoundTripper = transport
	if cfg.UserAgent != "" {
		rt = &userAgentTransport{next: transport, userAgent: cfg.UserAgent}
	}

	return &http.Client{
		Timeout:       timeout,
		Transport:     rt,
		CheckRedirect: RedirectPolicy(maxRedirects),
	}
}

// RedirectPolicy returns a CheckRedirect function that follows up to maxHops
// redirects. A negative maxHops stops at the first redirect and hands the 3xx
// response back to the caller.
func RedirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if maxHops < 0 {
			return http.ErrUseLastResponse
		}
		if len(via) >= maxHops {
			return ErrTooManyRedirects
		}
		return nil
	}
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}
