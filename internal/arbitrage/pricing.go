package arbitrage

import (
	"context"

	"market-oracle/internal/domain"

	"github.com/rs/zerolog"
)

// UnknownAssetBasePrice is used for assets with no canonical price. It is a
// placeholder that keeps unknown assets scannable rather than rejecting them.
const UnknownAssetBasePrice = 1.0

// BasePricer resolves the reference price an asset's venue quotes are
// anchored to.
type BasePricer interface {
	BasePrice(ctx context.Context, asset string) (float64, error)
}

var canonicalBasePrices = map[string]float64{
	"BTC":   65000,
	"WBTC":  65000,
	"ETH":   3500,
	"WETH":  3500,
	"SOL":   150,
	"BNB":   580,
	"AVAX":  35,
	"LINK":  15,
	"UNI":   8,
	"ARB":   0.8,
	"OP":    1.8,
	"MATIC": 0.5,
	"POL":   0.5,
	"USDC":  1,
	"USDT":  1,
	"DAI":   1,
}

// StaticBasePricer serves a fixed canonical price table.
type StaticBasePricer struct {
	prices map[string]float64
}

func NewStaticBasePricer() *StaticBasePricer {
	return &StaticBasePricer{prices: canonicalBasePrices}
}

func (p *StaticBasePricer) BasePrice(_ context.Context, asset string) (float64, error) {
	if price, ok := p.prices[domain.NormalizeSymbol(asset)]; ok {
		return price, nil
	}
	return UnknownAssetBasePrice, nil
}

type RefPriceReader interface {
	GetPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error)
}

// OracleBasePricer asks the reference price oracle first and falls back to
// another pricer when the oracle cannot answer.
type OracleBasePricer struct {
	oracle   RefPriceReader
	fallback BasePricer
	logger   zerolog.Logger
}

func NewOracleBasePricer(oracle RefPriceReader, fallback BasePricer, logger zerolog.Logger) *OracleBasePricer {
	return &OracleBasePricer{oracle: oracle, fallback: fallback, logger: logger}
}

func (p *OracleBasePricer) BasePrice(ctx context.Context, asset string) (float64, error) {
	quote, err := p.oracle.GetPrice(ctx, asset)
	if err == nil && quote.PriceUSD > 0 {
		return quote.PriceUSD, nil
	}
	if err != nil {
		p.logger.Debug().Err(err).Str("asset", asset).Msg("oracle base price unavailable, using fallback")
	}
	return p.fallback.BasePrice(ctx, asset)
}
