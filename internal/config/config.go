// Package config holds the typed configuration for the wikipath service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/philosophy/infrastructure/config"
	infraredis "github.com/jonesrussell/north-cloud/philosophy/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
	"github.com/jonesrussell/north-cloud/philosophy/internal/wiki"
)

// Cache backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

const (
	defaultTarget      = "https://en.wikipedia.org/wiki/Philosophy"
	defaultRandomStart = "https://en.wikipedia.org/wiki/Special:Random"
	defaultBatchCount  = 10
	defaultBatchDelay  = 10 * time.Millisecond
	defaultBadgerDir   = "data/paths"
)

// Config is the root configuration.
type Config struct {
	Debug   bool                      `env:"APP_DEBUG" yaml:"debug"`
	Logging infraconfig.LoggingConfig `yaml:"logging"`
	Server  infraconfig.ServerConfig  `yaml:"server"`
	Crawler CrawlerConfig             `yaml:"crawler"`
	Cache   CacheConfig               `yaml:"cache"`
	Batch   BatchConfig               `yaml:"batch"`
}

// CrawlerConfig configures traversal and the article source.
type CrawlerConfig struct {
	BaseURL          string        `env:"WIKI_BASE_URL"        yaml:"base_url"`
	UserAgent        string        `env:"WIKI_USER_AGENT"      yaml:"user_agent"`
	Target           string        `env:"WIKI_TARGET"          yaml:"target"`
	RandomStart      string        `env:"WIKI_RANDOM_START"    yaml:"random_start"`
	MaxHops          int           `env:"CRAWLER_MAX_HOPS"     yaml:"max_hops"`
	Timeout          time.Duration `env:"CRAWLER_TIMEOUT"      yaml:"timeout"`
	RateLimit        float64       `env:"CRAWLER_RATE_LIMIT"   yaml:"rate_limit"`
	Burst            int           `yaml:"burst"`
	MaxRetries       int           `env:"CRAWLER_MAX_RETRIES"  yaml:"max_retries"`
	RetryDelay       time.Duration `env:"CRAWLER_RETRY_DELAY"  yaml:"retry_delay"`
	DocCacheSize     int           `yaml:"doc_cache_size"`
	BreakerThreshold int           `yaml:"breaker_threshold"`
	BreakerCoolDown  time.Duration `yaml:"breaker_cool_down"`
}

// Source returns the article source configuration.
func (c *CrawlerConfig) Source() wiki.Config {
	return wiki.Config{
		BaseURL:          c.BaseURL,
		UserAgent:        c.UserAgent,
		Timeout:          c.Timeout,
		RateLimit:        c.RateLimit,
		Burst:            c.Burst,
		DocCacheSize:     c.DocCacheSize,
		MaxRetries:       c.MaxRetries,
		RetryDelay:       c.RetryDelay,
		BreakerThreshold: c.BreakerThreshold,
		BreakerCoolDown:  c.BreakerCoolDown,
	}
}

// CacheConfig selects and configures the path cache store.
type CacheConfig struct {
	Backend  string                     `env:"CACHE_BACKEND"    yaml:"backend"`
	Path     string                     `env:"CACHE_PATH"       yaml:"path"`
	RedisKey string                     `env:"CACHE_REDIS_KEY"  yaml:"redis_key"`
	Redis    infraredis.Config          `yaml:"redis"`
	Database infraconfig.DatabaseConfig `yaml:"database"`
	Badger   BadgerConfig               `yaml:"badger"`
}

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	Dir        string `env:"CACHE_BADGER_DIR" yaml:"dir"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// BatchConfig configures the batch harness.
type BatchConfig struct {
	Count       int           `env:"BATCH_COUNT"       yaml:"count"`
	Concurrency int           `env:"BATCH_CONCURRENCY" yaml:"concurrency"`
	Delay       time.Duration `env:"BATCH_DELAY"       yaml:"delay"`
}

// Load reads path, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults(path, SetDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SetDefaults fills every unset field.
func SetDefaults(cfg *Config) {
	cfg.Logging.SetDefaults()
	cfg.Server.SetDefaults()

	if cfg.Crawler.Target == "" {
		cfg.Crawler.Target = defaultTarget
	}
	if cfg.Crawler.RandomStart == "" {
		cfg.Crawler.RandomStart = defaultRandomStart
	}
	if cfg.Crawler.MaxHops == 0 {
		cfg.Crawler.MaxHops = pathfinder.DefaultMaxHops
	}
	if cfg.Crawler.BaseURL == "" {
		cfg.Crawler.BaseURL = wiki.DefaultBaseURL
	}
	if cfg.Crawler.RateLimit == 0 {
		cfg.Crawler.RateLimit = wiki.DefaultRateLimit
	}

	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = BackendFile
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = pathcache.DefaultFilePath
	}
	if cfg.Cache.RedisKey == "" {
		cfg.Cache.RedisKey = pathcache.DefaultRedisKey
	}
	if cfg.Cache.Badger.Dir == "" {
		cfg.Cache.Badger.Dir = defaultBadgerDir
	}
	if cfg.Cache.Backend == BackendPostgres {
		cfg.Cache.Database.SetDefaults()
	}

	if cfg.Batch.Count == 0 {
		cfg.Batch.Count = defaultBatchCount
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = 1
	}
	if cfg.Batch.Delay == 0 {
		cfg.Batch.Delay = defaultBatchDelay
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	errs := []error{
		infraconfig.ValidatePort("server.port", c.Server.Port),
		infraconfig.ValidateRequired("crawler.target", c.Crawler.Target),
		infraconfig.ValidatePositive("crawler.max_hops", c.Crawler.MaxHops),
		infraconfig.ValidatePositive("batch.count", c.Batch.Count),
		infraconfig.ValidatePositive("batch.concurrency", c.Batch.Concurrency),
		infraconfig.ValidateOneOf("cache.backend", c.Cache.Backend,
			BackendFile, BackendRedis, BackendPostgres, BackendBadger, BackendMemory),
	}

	switch c.Cache.Backend {
	case BackendFile:
		errs = append(errs, infraconfig.ValidateRequired("cache.path", c.Cache.Path))
	case BackendRedis:
		errs = append(errs, infraconfig.ValidateRequired("cache.redis.address", c.Cache.Redis.Address))
	case BackendPostgres:
		errs = append(errs,
			infraconfig.ValidateRequired("cache.database.user", c.Cache.Database.User),
			infraconfig.ValidateRequired("cache.database.database", c.Cache.Database.Database),
		)
	}

	return errors.Join(errs...)
}
