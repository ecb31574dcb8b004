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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
	coingeckoSource  = "coingecko"
)

// CoinGeckoProvider fetches USD reference prices from the CoinGecko API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
	now     func() time.Time
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds), the
// free-tier budget. An empty baseURL uses the public API.
func NewCoinGeckoProvider(tracer trace.Tracer, baseURL, apiKey string) *CoinGeckoProvider {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
		now:     time.Now,
	}
}

// FetchPrice performs a single upstream lookup for symbol.
func (p *CoinGeckoProvider) FetchPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-price")
	defer span.End()

	symbol = domain.NormalizeSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", symbol))

	cgID, ok := domain.LookupCoinGeckoID(symbol)
	if !ok {
		return nil, fmt.Errorf("unsupported symbol %s: %w", symbol, domain.ErrNotFound)
	}

	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_last_updated_at=true",
		p.baseURL, url.QueryEscape(cgID))

	var headers map[string]string
	if p.apiKey != "" {
		headers = map[string]string{"x-cg-demo-api-key": p.apiKey}
	}

	body, err := doGet(ctx, p.client, p.limiter, coingeckoSource, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch price for %s: %w", symbol, err)
	}

	// Response shape: {"ethereum": {"usd": 3500.12, "last_updated_at": 1735689600}}
	var raw map[string]struct {
		USD           *float64 `json:"usd"`
		LastUpdatedAt int64    `json:"last_updated_at"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse price for %s: %w: %v", symbol, domain.ErrUpstreamUnavailable, err)
	}

	data, ok := raw[cgID]
	if !ok || data.USD == nil {
		return nil, fmt.Errorf("price for %s missing from response: %w", symbol, domain.ErrUpstreamUnavailable)
	}

	ts := p.now().UnixMilli()
	if data.LastUpdatedAt > 0 {
		ts = data.LastUpdatedAt * 1000
	}

	return &domain.PriceQuote{
		Symbol:    symbol,
		PriceUSD:  *data.USD,
		Timestamp: ts,
		Source:    coingeckoSource,
	}, nil
}
