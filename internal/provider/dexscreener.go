package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"market-oracle/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	dexScreenerBaseURL = "https://api.dexscreener.com"
	dexScreenerSource  = "dexscreener"
)

// DexScreenerProvider fetches pair liquidity, volume and price from DexScreener.
type DexScreenerProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
	now     func() time.Time
}

// NewDexScreenerProvider creates a provider limited to 300 requests per
// minute (one token every 200ms, bursts of 10).
func NewDexScreenerProvider(tracer trace.Tracer, baseURL string) *DexScreenerProvider {
	if baseURL == "" {
		baseURL = dexScreenerBaseURL
	}
	return &DexScreenerProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: NewRateLimiter(10, 200*time.Millisecond),
		now:     time.Now,
	}
}

type dexScreenerPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	PriceUSD    string `json:"priceUsd"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
}

// FetchPair performs one lookup of pairAddress on chain. No retries.
func (p *DexScreenerProvider) FetchPair(ctx context.Context, chain domain.Chain, pairAddress string) (*domain.DexSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "dexscreener.fetch-pair")
	defer span.End()
	span.SetAttributes(
		attribute.String("chain", chain.ID),
		attribute.String("pair_address", pairAddress),
	)

	endpoint := fmt.Sprintf("%s/latest/dex/pairs/%s/%s",
		p.baseURL, url.PathEscape(chain.DexScreenerID), url.PathEscape(pairAddress))

	body, err := doGet(ctx, p.client, p.limiter, dexScreenerSource, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch pair %s/%s: %w", chain.ID, pairAddress, err)
	}

	var raw struct {
		Pairs []dexScreenerPair `json:"pairs"`
		Pair  *dexScreenerPair  `json:"pair"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse pair %s/%s: %w: %v", chain.ID, pairAddress, domain.ErrUpstreamUnavailable, err)
	}

	pair := selectPair(raw.Pairs, raw.Pair, pairAddress)
	if pair == nil {
		return nil, fmt.Errorf("pair %s on %s: %w", pairAddress, chain.ID, domain.ErrNotFound)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(pair.PriceUSD))
	if err != nil {
		return nil, fmt.Errorf("parse priceUsd %q: %w: %v", pair.PriceUSD, domain.ErrUpstreamUnavailable, err)
	}

	return &domain.DexSnapshot{
		Chain:        chain.ID,
		PairAddress:  pairAddress,
		DexID:        pair.DexID,
		PriceUSD:     price.InexactFloat64(),
		LiquidityUSD: pair.Liquidity.USD,
		Volume24hUSD: pair.Volume.H24,
		FeeBps:       domain.LookupDexFeeBps(pair.DexID),
		Timestamp:    p.now().UnixMilli(),
		Source:       dexScreenerSource,
	}, nil
}

func selectPair(pairs []dexScreenerPair, single *dexScreenerPair, address string) *dexScreenerPair {
	for i := range pairs {
		if strings.EqualFold(pairs[i].PairAddress, address) {
			return &pairs[i]
		}
	}
	if single != nil && strings.EqualFold(single.PairAddress, address) {
		return single
	}
	return nil
}
