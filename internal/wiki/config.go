package wiki

import (
	"time"

	"github.com/jonesrussell/north-cloud/philosophy/infrastructure/retry"
)

// Defaults for the article source.
const (
	DefaultBaseURL      = "https://en.wikipedia.org"
	DefaultUserAgent    = "wikipath/1.0 (+https://github.com/jonesrussell/north-cloud)"
	DefaultTimeout      = 15 * time.Second
	DefaultRateLimit    = 5.0
	DefaultBurst        = 2
	DefaultDocCacheSize = 64
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 500 * time.Millisecond
	DefaultMaxRedirects = 5
)

// Config configures the HTTP article source.
type Config struct {
	// BaseURL is prefixed to relative article links.
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// RateLimit is the sustained number of requests per second. Zero or
	// negative disables pacing.
	RateLimit float64
	Burst     int
	// DocCacheSize is the number of recently fetched pages kept in memory.
	DocCacheSize int
	MaxRetries   int
	RetryDelay   time.Duration
	MaxRedirects int
	// BreakerThreshold is the number of consecutive upstream failures that
	// pauses fetching. Zero uses the circuit breaker default.
	BreakerThreshold int
	BreakerCoolDown  time.Duration
	// OnCircuitChange, when set, receives the new breaker state name.
	OnCircuitChange func(state string)
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.DocCacheSize == 0 {
		c.DocCacheSize = DefaultDocCacheSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
}

func (c *Config) retryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = c.MaxRetries
	cfg.InitialDelay = c.RetryDelay
	return cfg
}
