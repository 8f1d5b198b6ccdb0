package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	infracontext "github.com/jonesrussell/north-cloud/philosophy/infrastructure/context"
	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/philosophy/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/philosophy/internal/config"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathcache"
)

// OpenStore opens the cache store selected by cfg.Backend.
func OpenStore(ctx context.Context, cfg config.CacheConfig, log infralogger.Logger) (pathcache.Store, error) {
	log = log.With(infralogger.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendFile:
		log.Info("Using file path cache", infralogger.String("path", cfg.Path))
		return pathcache.NewFileStore(cfg.Path), nil

	case config.BackendMemory:
		log.Info("Using in-memory path cache; paths are lost on exit")
		return pathcache.NewMemoryStore(nil), nil

	case config.BackendRedis:
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("Using Redis path cache",
			infralogger.String("address", cfg.Redis.Address),
			infralogger.String("key", cfg.RedisKey),
		)
		return pathcache.NewRedisStore(client, cfg.RedisKey), nil

	case config.BackendPostgres:
		return openPostgresStore(ctx, cfg, log)

	case config.BackendBadger:
		store, err := pathcache.OpenBadgerStore(pathcache.BadgerConfig{
			Dir:        cfg.Badger.Dir,
			SyncWrites: cfg.Badger.SyncWrites,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		log.Info("Using Badger path cache", infralogger.String("dir", cfg.Badger.Dir))
		return store, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func openPostgresStore(ctx context.Context, cfg config.CacheConfig, log infralogger.Logger) (pathcache.Store, error) {
	dbCfg := cfg.Database
	log.Info("Connecting to PostgreSQL database",
		infralogger.String("host", dbCfg.Host),
		infralogger.Int("port", dbCfg.Port),
		infralogger.String("database", dbCfg.Database),
	)

	db, err := sqlx.Open("postgres", dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(dbCfg.MaxConnections)
	db.SetMaxIdleConns(dbCfg.MaxIdleConns)
	db.SetConnMaxLifetime(dbCfg.ConnMaxLifetime)

	pingCtx, cancel := infracontext.WithPingTimeout(ctx)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := pathcache.NewPostgresStore(db)
	if err = store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}
