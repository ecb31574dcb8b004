package job

import (
	"context"
	"time"

	"market-oracle/internal/domain"
	"market-oracle/internal/logging"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PriceWarmer keeps reference prices for a basket of symbols in cache so
// ticker requests rarely wait on upstream.
type PriceWarmer struct {
	tracer   trace.Tracer
	logger   zerolog.Logger
	prices   RefPriceBatcher
	symbols  []string
	interval time.Duration
}

type RefPriceBatcher interface {
	GetPrices(ctx context.Context, symbols []string) (map[string]*domain.PriceQuote, error)
}

func NewPriceWarmer(tracer trace.Tracer, logger zerolog.Logger, prices RefPriceBatcher, symbols []string, intervalSecs int) *PriceWarmer {
	return &PriceWarmer{
		tracer:   tracer,
		logger:   logging.Component(logger, "price-warmer"),
		prices:   prices,
		symbols:  symbols,
		interval: time.Duration(intervalSecs) * time.Second,
	}
}

// Start warms the cache immediately and then every interval. Blocks until ctx
// is cancelled. A non-positive interval disables the warmer.
func (w *PriceWarmer) Start(ctx context.Context) {
	if w.interval <= 0 || len(w.symbols) == 0 {
		w.logger.Info().Msg("price warmer disabled")
		return
	}
	w.logger.Info().Dur("interval", w.interval).Strs("symbols", w.symbols).Msg("price warmer starting")
	w.pollLoop(ctx, w.interval, w.warm)
	w.logger.Info().Msg("price warmer stopped")
}

func (w *PriceWarmer) pollLoop(ctx context.Context, interval time.Duration, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("initial warm run incomplete")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				w.logger.Warn().Err(err).Msg("warm run incomplete")
			}
		}
	}
}

func (w *PriceWarmer) warm(ctx context.Context) error {
	ctx, span := w.tracer.Start(ctx, "price-warmer.warm")
	defer span.End()

	quotes, err := w.prices.GetPrices(ctx, w.symbols)
	span.SetAttributes(attribute.Int("warmed", len(quotes)))

	stale := 0
	for _, q := range quotes {
		if q.Stale {
			stale++
		}
	}
	w.logger.Debug().Int("warmed", len(quotes)).Int("stale", stale).Msg("warm run finished")
	// Failures caused by shutdown are not worth a warning.
	if ctx.Err() != nil {
		return nil
	}
	return err
}
