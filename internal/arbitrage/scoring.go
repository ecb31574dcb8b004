package arbitrage

import "market-oracle/internal/domain"

// Confidence scoring constants, in score points.
const (
	baseConfidence    = 70.0
	sameChainBonus    = 10.0
	highGasPenalty    = 10.0
	minConfidence     = 0.0
	maxConfidence     = 100.0
	wideSpreadBps     = 100.0
	mediumSpreadBps   = 50.0
	narrowSpreadBps   = 20.0
	wideSpreadBonus   = 15.0
	mediumSpreadBonus = 10.0
	narrowSpreadBonus = 5.0
)

func spreadBps(buyPrice, sellPrice float64) float64 {
	return (sellPrice - buyPrice) / buyPrice * 10000
}

// estimatedCostBps is the gas cost of both legs, plus a bridge surcharge when
// the legs settle on different chains.
func estimatedCostBps(buy, sell domain.Chain) float64 {
	if buy.ID == sell.ID {
		return 2 * buy.GasCostBps
	}
	return buy.GasCostBps + sell.GasCostBps + domain.BridgeSurchargeBps
}

func confidenceScore(spread float64, buy, sell domain.Chain) float64 {
	score := baseConfidence
	switch {
	case spread > wideSpreadBps:
		score += wideSpreadBonus
	case spread > mediumSpreadBps:
		score += mediumSpreadBonus
	case spread > narrowSpreadBps:
		score += narrowSpreadBonus
	}
	if buy.ID == sell.ID {
		score += sameChainBonus
	}
	if hi := domain.HighestGasChain(); buy.ID == hi || sell.ID == hi {
		score -= highGasPenalty
	}
	return min(max(score, minConfidence), maxConfidence)
}
