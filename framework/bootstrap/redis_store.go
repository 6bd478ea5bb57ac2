package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "foundation:bootstrap:app"

// RedisStore keeps the snapshot under a single Redis key so that several
// replicas share one compiled snapshot.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore creates a store writing to key through client.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Location() string { return "redis://" + s.key }

func (s *RedisStore) Exists(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return false, fmt.Errorf("bootstrap: redis exists %s: %w", s.key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("bootstrap: snapshot %s missing: %w", s.key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("bootstrap: redis get %s: %w", s.key, err)
	}
	return data, nil
}

// Write replaces the snapshot. It has no expiry; the snapshot lives until
// the next Build or Delete.
func (s *RedisStore) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("bootstrap: redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("bootstrap: redis del %s: %w", s.key, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
