package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"

	"n8n-optimizer/src/config"
)

// KeyValueStore persists JSON-encoded values by key.
// A ttl of zero keeps the entry until it is deleted or evicted.
type KeyValueStore interface {
	// Get decodes the stored value into dest and reports whether the key was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NewStore returns a redis backed store when an address is configured,
// otherwise an in-process one
func NewStore(cfg config.Config) (KeyValueStore, error) {
	if cfg.Redis.Addr != "" {
		return NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})), nil
	}
	return NewLocalStore(cfg.StoreCacheSize)
}

// LocalStore keeps values in a ristretto cache. Every entry costs 1, so
// size is the number of entries kept.
type LocalStore struct {
	cache *ristretto.Cache
}

func NewLocalStore(size int64) (*LocalStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * size,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create local store: %w", err)
	}
	return &LocalStore{cache: cache}, nil
}

func (s *LocalStore) Get(_ context.Context, key string, dest any) (bool, error) {
	value, found := s.cache.Get(key)
	if !found {
		return false, nil
	}
	data, ok := value.([]byte)
	if !ok {
		return false, fmt.Errorf("local store: unexpected value type %T for key %s", value, key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("local store: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *LocalStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("local store: encode %s: %w", key, err)
	}
	s.cache.SetWithTTL(key, data, 1, ttl)
	// make the write visible to the next Get
	s.cache.Wait()
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	s.cache.Del(key)
	return nil
}

func (s *LocalStore) Close() {
	s.cache.Close()
}

// RedisStore keeps values in redis
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, timeout: 5 * time.Second}
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
