package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-oracle/internal/cache"
	"market-oracle/internal/config"
	"market-oracle/internal/db"
	"market-oracle/internal/domain"
	"market-oracle/internal/handler"
	"market-oracle/internal/job"
	"market-oracle/internal/logging"
	"market-oracle/internal/provider"
	"market-oracle/internal/service"
	"market-oracle/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "market-oracle/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	newLoggerFunc          = logging.NewLogger
	initTracerFunc         = tracing.InitTracer
	connectPostgresFunc    = db.ConnectPostgres
	connectRedisFunc       = cache.ConnectRedis
	startWarmerFunc        = func(w *job.PriceWarmer, ctx context.Context) { go w.Start(ctx) }
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Market Oracle API
// @version         1.0
// @description     Reference and DEX price oracles with a cross-chain arbitrage scanner.

// @host      localhost:8080
// @BasePath  /
func main() {
	if err := loadEnvFunc(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := loadConfigFunc()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := newLoggerFunc(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Caller: cfg.LogCaller})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Config{Enabled: cfg.TracingEnabled, Endpoint: cfg.OTLPEndpoint})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	store, closeStore := buildStore(ctx, cfg, tracer, logger)
	defer closeStore()

	coinGecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, cfg.CoinGeckoAPIKey)
	dexScreener := provider.NewDexScreenerProvider(tracer, cfg.DexScreenerBaseURL)

	refPrice := service.NewRefPriceService(tracer, logger, coinGecko, store, seconds(cfg.RefPriceTTLSecs), service.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.RetryMaxMs) * time.Millisecond,
	})
	dexPairs := service.NewDexPairService(tracer, logger, dexScreener, store, seconds(cfg.DexTTLSecs))

	scanner, err := buildScanner(cfg, tracer, logger, refPrice, dexPairs)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure arbitrage scanner")
	}

	warmer := job.NewPriceWarmer(tracer, logger, refPrice, domain.DefaultBasket, cfg.RefPriceWarmSecs)
	startWarmerFunc(warmer, ctx)

	h := handler.New(tracer, logger, refPrice, dexPairs, scanner)

	r := newRouterFunc()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("cache", cfg.CacheBackend).Str("scanner", cfg.ScannerMode).Msg("server listening")
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exiting")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
