package pathcache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

// DefaultRedisKey is the hash holding the mapping, one field per title.
const DefaultRedisKey = "wikipath:paths"

// RedisStore keeps the mapping in a single Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a store using the hash at key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Load reads every field of the hash.
func (s *RedisStore) Load(ctx context.Context) (map[string]domain.Path, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.key, err)
	}

	paths := make(map[string]domain.Path, len(fields))
	for title, raw := range fields {
		paths[title] = decodePath([]byte(raw))
	}
	return paths, nil
}

// Save replaces the hash inside MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, paths map[string]domain.Path) error {
	values := make(map[string]any, len(paths))
	for title, path := range paths {
		raw, err := json.Marshal(path)
		if err != nil {
			return fmt.Errorf("encode path for %q: %w", title, err)
		}
		values[title] = string(raw)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", s.key, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
