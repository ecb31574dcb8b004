package domain

// CoinGeckoID maps reference symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"USDC":  "usd-coin",
	"USDT":  "tether",
	"DAI":   "dai",
	"MATIC": "matic-network",
	"POL":   "polygon-ecosystem-token",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"AVAX":  "avalanche-2",
	"BNB":   "binancecoin",
	"LINK":  "chainlink",
	"WBTC":  "wrapped-bitcoin",
	"WETH":  "weth",
	"UNI":   "uniswap",
}

// LookupCoinGeckoID resolves a symbol in any case to its CoinGecko id.
func LookupCoinGeckoID(symbol string) (string, bool) {
	id, ok := CoinGeckoID[NormalizeSymbol(symbol)]
	return id, ok
}

// SupportedSymbols lists the reference symbols in a stable order.
var SupportedSymbols = []string{
	"BTC", "ETH", "SOL", "USDC", "USDT", "DAI", "MATIC", "POL",
	"ARB", "OP", "AVAX", "BNB", "LINK", "WBTC", "WETH", "UNI",
}
