package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

const (
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
	CacheBackendMemory   = "memory"

	ScannerModeSynthetic = "synthetic"
	ScannerModeLive      = "live"
)

type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogCaller bool   `env:"LOG_CALLER" envDefault:"false"`

	CacheBackend string `env:"CACHE_BACKEND" envDefault:"redis"`
	RedisURL     string `env:"REDIS_URL"`
	DatabaseURL  string `env:"DATABASE_URL"`

	CoinGeckoBaseURL   string `env:"COINGECKO_BASE_URL" envDefault:"https://api.coingecko.com/api/v3"`
	CoinGeckoAPIKey    string `env:"COINGECKO_API_KEY"`
	DexScreenerBaseURL string `env:"DEXSCREENER_BASE_URL" envDefault:"https://api.dexscreener.com"`

	RefPriceTTLSecs  int `env:"REFPRICE_TTL_SECS" envDefault:"300"`
	DexTTLSecs       int `env:"DEX_TTL_SECS" envDefault:"10"`
	RetryMaxAttempts int `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseMs      int `env:"RETRY_BASE_MS" envDefault:"500"`
	RetryMaxMs       int `env:"RETRY_MAX_MS" envDefault:"4000"`

	ScannerMode           string `env:"SCANNER_MODE" envDefault:"synthetic"`
	ScannerPairsFile      string `env:"SCANNER_PAIRS_FILE"`
	ScannerMaxConcurrency int    `env:"SCANNER_MAX_CONCURRENCY" envDefault:"4"`
	ScannerOracleBase     bool   `env:"SCANNER_ORACLE_BASE" envDefault:"false"`

	RefPriceWarmSecs int `env:"REFPRICE_WARM_SECS" envDefault:"240"`

	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"true"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
}

// Load reads configuration from the environment. Malformed values are an
// error; out-of-range values fall back to their defaults with a warning.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))
	switch c.CacheBackend {
	case CacheBackendRedis, CacheBackendPostgres, CacheBackendMemory:
	default:
		log.Warn().Str("cache_backend", c.CacheBackend).Msg("unsupported CACHE_BACKEND, defaulting to redis")
		c.CacheBackend = CacheBackendRedis
	}

	if c.CacheBackend == CacheBackendRedis && c.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, defaulting to localhost:6379")
		c.RedisURL = "localhost:6379"
	}
	if c.CacheBackend == CacheBackendPostgres && c.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, falling back to in-memory cache")
		c.CacheBackend = CacheBackendMemory
	}

	c.ScannerMode = strings.ToLower(strings.TrimSpace(c.ScannerMode))
	if c.ScannerMode != ScannerModeSynthetic && c.ScannerMode != ScannerModeLive {
		log.Warn().Str("scanner_mode", c.ScannerMode).Msg("unsupported SCANNER_MODE, defaulting to synthetic")
		c.ScannerMode = ScannerModeSynthetic
	}

	positive(&c.RefPriceTTLSecs, 300, "REFPRICE_TTL_SECS")
	positive(&c.DexTTLSecs, 10, "DEX_TTL_SECS")
	positive(&c.RetryMaxAttempts, 3, "RETRY_MAX_ATTEMPTS")
	positive(&c.RetryBaseMs, 500, "RETRY_BASE_MS")
	positive(&c.RetryMaxMs, 4000, "RETRY_MAX_MS")
	positive(&c.ScannerMaxConcurrency, 4, "SCANNER_MAX_CONCURRENCY")

	if c.RefPriceWarmSecs < 0 {
		log.Warn().Int("value", c.RefPriceWarmSecs).Msg("negative REFPRICE_WARM_SECS, disabling warmer")
		c.RefPriceWarmSecs = 0
	}
}

func positive(v *int, def int, name string) {
	if *v > 0 {
		return
	}
	log.Warn().Int("value", *v).Int("default", def).Msgf("invalid %s, using default", name)
	*v = def
}
