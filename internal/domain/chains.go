package domain

import "strings"

// Chain describes a settlement chain the oracles and scanner know about.
type Chain struct {
	ID            string
	DexScreenerID string
	GasCostBps    float64
	Venues        []string
	nativeAliases []string
}

// BridgeSurchargeBps is added to every cross-chain opportunity cost.
const BridgeSurchargeBps = 15.0

var chains = []Chain{
	{ID: "eth", DexScreenerID: "ethereum", GasCostBps: 30, Venues: []string{"uniswap", "sushiswap", "curve", "balancer"}, nativeAliases: []string{"ethereum", "mainnet"}},
	{ID: "polygon", DexScreenerID: "polygon", GasCostBps: 5, Venues: []string{"quickswap", "uniswap", "sushiswap"}, nativeAliases: []string{"matic"}},
	{ID: "arbitrum", DexScreenerID: "arbitrum", GasCostBps: 8, Venues: []string{"uniswap", "camelot", "sushiswap"}, nativeAliases: []string{"arb"}},
	{ID: "optimism", DexScreenerID: "optimism", GasCostBps: 8, Venues: []string{"velodrome", "uniswap"}, nativeAliases: []string{"op"}},
	{ID: "base", DexScreenerID: "base", GasCostBps: 6, Venues: []string{"aerodrome", "uniswap"}},
	{ID: "bsc", DexScreenerID: "bsc", GasCostBps: 10, Venues: []string{"pancakeswap", "uniswap"}, nativeAliases: []string{"bnb"}},
	{ID: "avalanche", DexScreenerID: "avalanche", GasCostBps: 12, Venues: []string{"traderjoe", "pangolin"}, nativeAliases: []string{"avax"}},
	{ID: "solana", DexScreenerID: "solana", GasCostBps: 3, Venues: []string{"raydium", "orca"}, nativeAliases: []string{"sol"}},
}

var chainIndex = func() map[string]Chain {
	idx := make(map[string]Chain, len(chains)*2)
	for _, c := range chains {
		idx[c.ID] = c
		for _, alias := range c.nativeAliases {
			idx[alias] = c
		}
	}
	return idx
}()

// LookupChain resolves a chain id or alias, case-insensitively.
func LookupChain(name string) (Chain, bool) {
	c, ok := chainIndex[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// SupportedChains returns the canonical chain ids.
func SupportedChains() []string {
	ids := make([]string, 0, len(chains))
	for _, c := range chains {
		ids = append(ids, c.ID)
	}
	return ids
}

// HighestGasChain returns the id of the most expensive chain in the table.
func HighestGasChain() string {
	best := chains[0]
	for _, c := range chains[1:] {
		if c.GasCostBps > best.GasCostBps {
			best = c
		}
	}
	return best.ID
}

// DefaultDexFeeBps applies to DEXes missing from DexFeeBps.
const DefaultDexFeeBps = 30.0

// DexFeeBps is the swap fee charged by each DEX, keyed by DexScreener dexId.
var DexFeeBps = map[string]float64{
	"uniswap":     30,
	"sushiswap":   30,
	"pancakeswap": 25,
	"quickswap":   30,
	"curve":       4,
	"balancer":    20,
	"aerodrome":   30,
	"velodrome":   30,
	"camelot":     30,
	"traderjoe":   30,
	"pangolin":    30,
	"raydium":     25,
	"orca":        30,
}

// LookupDexFeeBps returns the fee for dexID, or the default fee.
func LookupDexFeeBps(dexID string) float64 {
	if fee, ok := DexFeeBps[strings.ToLower(dexID)]; ok {
		return fee
	}
	return DefaultDexFeeBps
}
