package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// RedisStore implements core.StateStore on a shared Redis instance. All
// methods are safe for concurrent use; atomicity of IncrWithTTL comes from
// Redis INCR itself, never from a read-then-write pair.
type RedisStore struct {
	client *redis.Client
}

var _ core.StateStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses a redis:// URL, connects and pings.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// IncrWithTTL increments the counter at key and attaches ttlIfNew only when
// this increment created the key (result 1). Subsequent increments never
// touch the expiry, so the window closes at a fixed time regardless of
// traffic.
func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttlIfNew time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %q: %w", key, err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, ttlIfNew).Err(); err != nil {
			return count, fmt.Errorf("redis expire %q: %w", key, err)
		}
	}
	return count, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
