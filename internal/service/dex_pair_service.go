package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"market-oracle/internal/cache"
	"market-oracle/internal/domain"
	"market-oracle/internal/logging"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDexTTL is short because DEX prices move quickly.
const DefaultDexTTL = 10 * time.Second

// Hex EVM addresses and base58 Solana addresses both fit this shape.
var pairAddressPattern = regexp.MustCompile(`^[0-9A-Za-z]{16,66}$`)

type DexPairFetcher interface {
	FetchPair(ctx context.Context, chain domain.Chain, pairAddress string) (*domain.DexSnapshot, error)
}

// DexPairService serves DEX pair snapshots cache-first. A miss triggers a
// single upstream fetch; there is no retry loop and no stale fallback.
type DexPairService struct {
	tracer  trace.Tracer
	logger  zerolog.Logger
	fetcher DexPairFetcher
	store   cache.Store
	ttl     time.Duration
	now     func() time.Time
}

func NewDexPairService(tracer trace.Tracer, logger zerolog.Logger, fetcher DexPairFetcher, store cache.Store, ttl time.Duration) *DexPairService {
	if ttl <= 0 {
		ttl = DefaultDexTTL
	}
	return &DexPairService{
		tracer:  tracer,
		logger:  logging.Component(logger, "dexpair"),
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// DexCacheKey is the cache key for a pair. EVM addresses are
// case-insensitive and are lower-cased; other addresses are kept verbatim.
func DexCacheKey(chainID, pairAddress string) string {
	if strings.HasPrefix(pairAddress, "0x") || strings.HasPrefix(pairAddress, "0X") {
		pairAddress = strings.ToLower(pairAddress)
	}
	return "oracle:dex:" + chainID + ":" + pairAddress
}

func (s *DexPairService) GetPairSnapshot(ctx context.Context, chain, pairAddress string) (*domain.DexSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "dexpair-service.get-pair-snapshot")
	defer span.End()

	c, ok := domain.LookupChain(chain)
	if !ok {
		return nil, fmt.Errorf("unsupported chain %q: %w", chain, domain.ErrInvalidInput)
	}
	pairAddress = strings.TrimSpace(pairAddress)
	if !pairAddressPattern.MatchString(pairAddress) {
		return nil, fmt.Errorf("malformed pair address %q: %w", pairAddress, domain.ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("chain", c.ID), attribute.String("pair_address", pairAddress))

	key := DexCacheKey(c.ID, pairAddress)
	if cached, expiresAt, ok := readCached[domain.DexSnapshot](ctx, s.store, s.logger, key); ok && expiresAt.After(s.now()) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	snap, err := s.fetcher.FetchPair(ctx, c, pairAddress)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("pair %s on %s: %w: %v", pairAddress, c.ID, domain.ErrUpstreamUnavailable, err)
	}

	writeCached(ctx, s.store, s.logger, key, snap, s.now().Add(s.ttl))
	return snap, nil
}
