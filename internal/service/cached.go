package service

import (
	"context"
	"encoding/json"
	"time"

	"market-oracle/internal/cache"

	"github.com/rs/zerolog"
)

// readCached loads and decodes key. A store or decode failure is logged and
// reported as a miss so the caller falls through to upstream.
func readCached[T any](ctx context.Context, store cache.Store, logger zerolog.Logger, key string) (*T, time.Time, bool) {
	if store == nil {
		return nil, time.Time{}, false
	}

	entry, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}

	var v T
	if err := json.Unmarshal(entry.Value, &v); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable")
		return nil, time.Time{}, false
	}
	return &v, entry.ExpiresAt, true
}

func writeCached(ctx context.Context, store cache.Store, logger zerolog.Logger, key string, v any, expiresAt time.Time) {
	if store == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := store.Put(ctx, key, data, expiresAt); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
