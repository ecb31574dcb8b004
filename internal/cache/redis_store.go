package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"market-oracle/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis used by RedisStore.
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisStore keeps each entry in a hash with fields "value" and
// "expires_at" (Unix nanoseconds). Keys carry no Redis TTL so an expired
// entry remains available as a stale fallback.
type RedisStore struct {
	rdb RedisClient
}

func NewRedisStore(rdb RedisClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	vals, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	if len(vals) == 0 {
		return domain.CacheEntry{}, false, nil
	}

	value, ok := vals["value"]
	if !ok {
		return domain.CacheEntry{}, false, nil
	}
	expiresNano, err := strconv.ParseInt(vals["expires_at"], 10, 64)
	if err != nil {
		return domain.CacheEntry{}, false, fmt.Errorf("redis: parse expires_at %s: %w", key, err)
	}

	return domain.CacheEntry{
		Key:       key,
		Value:     []byte(value),
		ExpiresAt: time.Unix(0, expiresNano),
	}, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	fields := map[string]interface{}{
		"value":      value,
		"expires_at": strconv.FormatInt(expiresAt.UnixNano(), 10),
	}
	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis: put %s: %w", key, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
