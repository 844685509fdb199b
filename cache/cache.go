package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wizarding-anonymous/cryo-sub004/config"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

// NewClient builds a pooled Redis client from the loaded configuration.
//
//nolint:ireturn
func NewClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// Store is a cache-aside key/value store. All methods are safe for
// concurrent use and none of them ever return a backend error.
type Store struct {
	client redis.UniversalClient
	logger log.Logger
	stats  counters
}

// New creates a Store over an existing Redis client.
func New(client redis.UniversalClient, logger log.Logger) *Store {
	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Store{client: client, logger: logger}
}

// Get returns the raw cached value for key. Any backend failure is logged
// and reported as a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.stats.backendErrors.Add(1)
			s.logger.Warnf("Cache get failed for key %s: %v", key, err)
		}

		s.stats.misses.Add(1)

		return nil, false
	}

	s.stats.hits.Add(1)

	return value, true
}

// GetJSON reads a cached value and unmarshals it into dst. A corrupt entry
// counts as a miss.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warnf("Cache entry for key %s is not valid JSON, treating as miss: %v", key, err)

		return false
	}

	return true
}

// Set writes a value with the given TTL, best-effort. Values that are not
// already raw bytes are marshalled as JSON. Callers must not depend on the
// write succeeding.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := encode(value)
	if err != nil {
		s.logger.Warnf("Cache set skipped for key %s, value not serializable: %v", key, err)

		return
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.stats.backendErrors.Add(1)
		s.logger.Warnf("Cache set failed for key %s: %v", key, err)

		return
	}

	s.stats.sets.Add(1)
}

// Invalidate deletes every named key. Callers invalidate the full set of
// keys they know they wrote; no wildcard scan is performed.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.stats.backendErrors.Add(1)
		s.logger.Warnf("Cache invalidation failed for keys %v: %v", keys, err)

		return
	}

	s.stats.invalidations.Add(uint64(len(keys)))
}

func encode(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
