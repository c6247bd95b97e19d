package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blog-backend/internal/config"
	"blog-backend/internal/logging"
)

// Store caches serialized responses under string keys.
type Store interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// client is the subset of go-redis commands the cache uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisStore is a Store backed by Redis string keys with a fixed TTL.
type RedisStore struct {
	client client
	ttl    time.Duration
	prefix string
}

// New returns a RedisStore when caching is enabled and a NoopStore otherwise.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return NoopStore{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return newRedisStore(rdb, time.Duration(cfg.TTLSeconds)*time.Second), nil
}

func newRedisStore(c client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisStore{client: c, ttl: ttl, prefix: "blog:"}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, r.ttl).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// NoopStore never holds anything.
type NoopStore struct{}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NoopStore) Set(context.Context, string, []byte) error           { return nil }
func (NoopStore) Close() error                                       { return nil }

// Remember returns the cached value for key, or calls load and caches its
// result. Cache failures are logged with the request's logger and never fail
// the request.
func Remember(ctx context.Context, s Store, key string, load func() ([]byte, error)) ([]byte, error) {
	log := logging.FromContext(ctx).With(zap.String("cache_key", key))

	if b, ok, err := s.Get(ctx, key); err != nil {
		log.Warn("cache get failed", zap.Error(err))
	} else if ok {
		log.Debug("cache hit")
		return b, nil
	}

	b, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, key, b); err != nil {
		log.Warn("cache set failed", zap.Error(err))
	}
	return b, nil
}

// RequestKey derives a cache key from the resource and the request URI.
// Per-user listings pass the caller's id so results are never shared.
func RequestKey(resource, requestURI string, userID ...int64) string {
	key := resource + ":" + requestURI
	for _, id := range userID {
		key += fmt.Sprintf("--%d", id)
	}
	return key
}
