package domain

import (
	"strings"
	"time"
)

// CacheEntry is one row of the oracle cache. Value is the serialized payload
// of whichever oracle wrote it.
type CacheEntry struct {
	Key       string
	Value     []byte
	ExpiresAt time.Time
}

// Fresh reports whether the entry is still within its TTL at now. Expired
// entries stay readable and are served as stale fallbacks.
func (e CacheEntry) Fresh(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// PriceQuote is a USD reference price for one symbol.
type PriceQuote struct {
	Symbol    string  `json:"symbol"`
	PriceUSD  float64 `json:"price_usd"`
	Timestamp int64   `json:"ts"`
	Source    string  `json:"source"`
	Stale     bool    `json:"stale,omitempty"`
}

// DexSnapshot is a point-in-time view of a DEX pair.
type DexSnapshot struct {
	Chain        string  `json:"chain"`
	PairAddress  string  `json:"pair_address"`
	DexID        string  `json:"dex_id,omitempty"`
	PriceUSD     float64 `json:"price_usd"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	FeeBps       float64 `json:"fee_bps"`
	Timestamp    int64   `json:"ts"`
	Source       string  `json:"source"`
}

// ArbitrageOpportunity is a ranked buy/sell leg pair produced by a scan.
type ArbitrageOpportunity struct {
	ID                  string  `json:"id"`
	Asset               string  `json:"asset"`
	BuyChain            string  `json:"buy_chain"`
	BuyVenue            string  `json:"buy_venue"`
	BuyPrice            float64 `json:"buy_price"`
	SellChain           string  `json:"sell_chain"`
	SellVenue           string  `json:"sell_venue"`
	SellPrice           float64 `json:"sell_price"`
	SpreadBps           float64 `json:"spread_bps"`
	NetProfitBps        float64 `json:"net_profit_bps"`
	EstimatedGasCostBps float64 `json:"estimated_gas_cost_bps"`
	Confidence          float64 `json:"confidence"`
	Timestamp           int64   `json:"timestamp"`
}

// ScanRequest selects what the arbitrage scanner looks at. An empty Asset
// means the default basket.
type ScanRequest struct {
	Asset        string   `json:"asset,omitempty"`
	MinProfitBps float64  `json:"minProfitBps"`
	Chains       []string `json:"chains"`
}

// NormalizeSymbol upper-cases and trims an asset symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// DefaultBasket is scanned when a request names no asset.
var DefaultBasket = []string{"ETH", "BTC", "USDC", "USDT", "SOL"}
