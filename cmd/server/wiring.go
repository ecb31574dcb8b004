package main

import (
	"context"
	"fmt"

	"market-oracle/internal/arbitrage"
	"market-oracle/internal/cache"
	"market-oracle/internal/config"
	"market-oracle/internal/repository"
	"market-oracle/internal/service"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// buildStore connects the configured cache backend. A backend that cannot be
// reached degrades to the in-memory store so the oracles keep serving.
func buildStore(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger zerolog.Logger) (cache.Store, func()) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		rdb, err := connectRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
			return cache.NewMemoryStore(), func() {}
		}
		logger.Info().Msg("connected to redis cache")
		return cache.NewRedisStore(rdb), func() { _ = rdb.Close() }

	case config.CacheBackendPostgres:
		pool, err := connectPostgresFunc(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("postgres unavailable, using in-memory cache")
			return cache.NewMemoryStore(), func() {}
		}
		repo := repository.NewCacheRepository(pool, tracer)
		if err := repo.RunMigrations(ctx); err != nil {
			pool.Close()
			logger.Warn().Err(err).Msg("cache table migration failed, using in-memory cache")
			return cache.NewMemoryStore(), func() {}
		}
		logger.Info().Msg("connected to postgres cache")
		return repo, pool.Close
	}

	logger.Info().Msg("using in-memory cache")
	return cache.NewMemoryStore(), func() {}
}

func buildScanner(
	cfg *config.Config,
	tracer trace.Tracer,
	logger zerolog.Logger,
	refPrice *service.RefPriceService,
	dexPairs *service.DexPairService,
) (*arbitrage.Scanner, error) {
	var base arbitrage.BasePricer = arbitrage.NewStaticBasePricer()
	if cfg.ScannerOracleBase {
		base = arbitrage.NewOracleBasePricer(refPrice, base, logger)
	}

	var source arbitrage.PriceSource
	switch cfg.ScannerMode {
	case config.ScannerModeLive:
		if cfg.ScannerPairsFile == "" {
			return nil, fmt.Errorf("SCANNER_MODE=live requires SCANNER_PAIRS_FILE")
		}
		pairs, err := arbitrage.LoadPairRegistry(cfg.ScannerPairsFile)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("pairs", pairs.Len()).Msg("live scanner pair registry loaded")
		source = arbitrage.NewLiveSource(dexPairs, pairs)
	default:
		source = arbitrage.NewSyntheticSource(nil)
	}

	return arbitrage.NewScanner(tracer, logger, base, source, arbitrage.Options{
		MaxConcurrency: cfg.ScannerMaxConcurrency,
	}), nil
}
