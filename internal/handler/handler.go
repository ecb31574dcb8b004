package handler

import (
	"context"

	"market-oracle/internal/domain"
	"market-oracle/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type RefPriceOracle interface {
	GetPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error)
}

type DexOracle interface {
	GetPairSnapshot(ctx context.Context, chain, pairAddress string) (*domain.DexSnapshot, error)
}

type ArbitrageScanner interface {
	Scan(ctx context.Context, req domain.ScanRequest) ([]domain.ArbitrageOpportunity, error)
}

type Handler struct {
	tracer   trace.Tracer
	logger   zerolog.Logger
	refPrice RefPriceOracle
	dex      DexOracle
	scanner  ArbitrageScanner
}

func New(tracer trace.Tracer, logger zerolog.Logger, refPrice RefPriceOracle, dex DexOracle, scanner ArbitrageScanner) *Handler {
	return &Handler{
		tracer:   tracer,
		logger:   logging.Component(logger, "handler"),
		refPrice: refPrice,
		dex:      dex,
		scanner:  scanner,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/oracle-refprice/:symbol", h.GetRefPrice)
	r.GET("/oracle-dex/:chain/:pairAddress", h.GetDexPair)
	r.POST("/arbitrage-scanner", h.ScanArbitrage)
}
