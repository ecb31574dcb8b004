package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-oracle/internal/cache"
	"market-oracle/internal/domain"
	"market-oracle/internal/logging"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRefPriceTTL matches the free-tier price API budget.
const DefaultRefPriceTTL = 5 * time.Minute

type RefPriceFetcher interface {
	FetchPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error)
}

// RetryPolicy bounds upstream attempts for rate-limited calls. The delay
// before retry n (0-based) is BaseDelay * 2^n, capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second}
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.MaxDelay,
	}
}

// RefPriceService serves USD reference prices cache-first, retrying
// rate-limited upstream calls and falling back to stale cache entries.
type RefPriceService struct {
	tracer  trace.Tracer
	logger  zerolog.Logger
	fetcher RefPriceFetcher
	store   cache.Store
	ttl     time.Duration
	retry   RetryPolicy
	now     func() time.Time
}

func NewRefPriceService(
	tracer trace.Tracer,
	logger zerolog.Logger,
	fetcher RefPriceFetcher,
	store cache.Store,
	ttl time.Duration,
	retry RetryPolicy,
) *RefPriceService {
	if ttl <= 0 {
		ttl = DefaultRefPriceTTL
	}
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	return &RefPriceService{
		tracer:  tracer,
		logger:  logging.Component(logger, "refprice"),
		fetcher: fetcher,
		store:   store,
		ttl:     ttl,
		retry:   retry,
		now:     time.Now,
	}
}

// RefPriceCacheKey is the cache key for symbol's reference price.
func RefPriceCacheKey(symbol string) string {
	return "oracle:refprice:" + domain.NormalizeSymbol(symbol)
}

// GetPrice returns the reference price for symbol. A fresh cache entry is
// returned without touching upstream. When upstream is rate limited and any
// cache entry exists, that entry is returned with Stale set.
func (s *RefPriceService) GetPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error) {
	ctx, span := s.tracer.Start(ctx, "refprice-service.get-price")
	defer span.End()

	symbol = domain.NormalizeSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", symbol))

	if _, ok := domain.LookupCoinGeckoID(symbol); !ok {
		return nil, fmt.Errorf("unknown symbol %s: %w", symbol, domain.ErrNotFound)
	}

	key := RefPriceCacheKey(symbol)
	cached, expiresAt, hasCached := readCached[domain.PriceQuote](ctx, s.store, s.logger, key)
	if hasCached && expiresAt.After(s.now()) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	quote, attempts, err := s.fetchWithRetry(ctx, symbol, hasCached)
	span.SetAttributes(attribute.Int("upstream.attempts", attempts))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, domain.ErrRateLimited) && hasCached {
			s.logger.Warn().Str("symbol", symbol).Time("expired_at", expiresAt).Msg("upstream rate limited, serving stale price")
			stale := *cached
			stale.Stale = true
			return &stale, nil
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Int("attempts", attempts).Msg("reference price unavailable")
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("reference price for %s: %w: %v", symbol, domain.ErrUpstreamUnavailable, err)
	}

	quote.Stale = false
	writeCached(ctx, s.store, s.logger, key, quote, s.now().Add(s.ttl))
	return quote, nil
}

// fetchWithRetry retries only rate-limited attempts. With a cached entry
// available the first rate-limited reply ends the loop so the caller can
// serve stale data instead of waiting out the backoff.
func (s *RefPriceService) fetchWithRetry(ctx context.Context, symbol string, haveFallback bool) (*domain.PriceQuote, int, error) {
	attempts := 0
	op := func() (*domain.PriceQuote, error) {
		attempts++
		quote, err := s.fetcher.FetchPrice(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		if errors.Is(err, domain.ErrRateLimited) && !haveFallback {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	quote, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.retry.backOff()),
		backoff.WithMaxTries(uint(s.retry.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Debug().Err(err).Str("symbol", symbol).Int("attempt", attempts).Dur("backoff", next).Msg("retrying reference price")
		}),
	)
	return quote, attempts, err
}

// GetPrices resolves each symbol in turn. Failures are joined into the
// returned error and do not stop the remaining lookups.
func (s *RefPriceService) GetPrices(ctx context.Context, symbols []string) (map[string]*domain.PriceQuote, error) {
	ctx, span := s.tracer.Start(ctx, "refprice-service.get-prices")
	defer span.End()

	quotes := make(map[string]*domain.PriceQuote, len(symbols))
	var errs []error
	for _, symbol := range symbols {
		quote, err := s.GetPrice(ctx, symbol)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", domain.NormalizeSymbol(symbol), err))
			continue
		}
		quotes[quote.Symbol] = quote
	}
	return quotes, errors.Join(errs...)
}
