package arbitrage

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"market-oracle/internal/domain"
	"market-oracle/internal/logging"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSamplesPerChain = 2
	DefaultMaxResults      = 10
	DefaultMaxConcurrency  = 4
)

type Options struct {
	SamplesPerChain int
	MaxResults      int
	MaxConcurrency  int
	// Rand drives venue selection. A randomly seeded generator is used when nil.
	Rand *rand.Rand
}

// Scanner samples venue prices across chains and ranks the buy/sell leg pairs
// that clear a minimum net profit.
type Scanner struct {
	tracer trace.Tracer
	logger zerolog.Logger
	base   BasePricer
	source PriceSource
	opts   Options

	mu    sync.Mutex
	rng   *rand.Rand
	now   func() time.Time
	newID func() string
}

func NewScanner(tracer trace.Tracer, logger zerolog.Logger, base BasePricer, source PriceSource, opts Options) *Scanner {
	if opts.SamplesPerChain <= 0 {
		opts.SamplesPerChain = DefaultSamplesPerChain
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	rng := opts.Rand
	if rng == nil {
		rng = newRand()
	}
	return &Scanner{
		tracer: tracer,
		logger: logging.Component(logger, "scanner"),
		base:   base,
		source: source,
		opts:   opts,
		rng:    rng,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

type venueSample struct {
	chain domain.Chain
	venue string
	price float64
	ok    bool
}

// Scan returns at most MaxResults opportunities with net profit of at least
// req.MinProfitBps, best first. An empty chain list yields no opportunities.
func (s *Scanner) Scan(ctx context.Context, req domain.ScanRequest) ([]domain.ArbitrageOpportunity, error) {
	ctx, span := s.tracer.Start(ctx, "scanner.scan")
	defer span.End()

	if math.IsNaN(req.MinProfitBps) || math.IsInf(req.MinProfitBps, 0) {
		return nil, fmt.Errorf("minProfitBps must be finite: %w", domain.ErrInvalidInput)
	}

	chains := s.resolveChains(req.Chains)
	assets := domain.DefaultBasket
	if a := domain.NormalizeSymbol(req.Asset); a != "" {
		assets = []string{a}
	}
	span.SetAttributes(
		attribute.Int("chains", len(chains)),
		attribute.StringSlice("assets", assets),
		attribute.Float64("min_profit_bps", req.MinProfitBps),
	)

	opportunities := []domain.ArbitrageOpportunity{}
	if len(chains) == 0 {
		return opportunities, nil
	}

	ts := s.now().UnixMilli()
	for _, asset := range assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		basePrice, err := s.base.BasePrice(ctx, asset)
		if err != nil {
			s.logger.Warn().Err(err).Str("asset", asset).Msg("no base price, skipping asset")
			continue
		}
		samples := s.sample(ctx, asset, chains, basePrice)
		opportunities = append(opportunities, s.pairUp(asset, samples, req.MinProfitBps, ts)...)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].NetProfitBps > opportunities[j].NetProfitBps
	})
	if len(opportunities) > s.opts.MaxResults {
		opportunities = opportunities[:s.opts.MaxResults]
	}
	span.SetAttributes(attribute.Int("opportunities", len(opportunities)))
	return opportunities, nil
}

// resolveChains canonicalizes names, drops duplicates and skips unknown chains.
func (s *Scanner) resolveChains(names []string) []domain.Chain {
	seen := make(map[string]bool, len(names))
	out := make([]domain.Chain, 0, len(names))
	for _, name := range names {
		c, ok := domain.LookupChain(name)
		if !ok {
			s.logger.Warn().Str("chain", name).Msg("unknown chain, skipping")
			continue
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// sample quotes SamplesPerChain venues on every chain. Venue quotes that fail
// are dropped from the scan.
func (s *Scanner) sample(ctx context.Context, asset string, chains []domain.Chain, basePrice float64) []venueSample {
	var samples []venueSample
	for _, c := range chains {
		for _, venue := range s.pickVenues(asset, c) {
			samples = append(samples, venueSample{chain: c, venue: venue})
		}
	}

	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrency)
	for i := range samples {
		g.Go(func() error {
			smp := &samples[i]
			price, err := s.source.VenuePrice(ctx, asset, smp.chain.ID, smp.venue, basePrice)
			if err != nil {
				s.logger.Warn().Err(err).Str("asset", asset).Str("chain", smp.chain.ID).Str("venue", smp.venue).Msg("venue quote failed")
				return nil
			}
			if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
				s.logger.Warn().Float64("price", price).Str("asset", asset).Str("chain", smp.chain.ID).Str("venue", smp.venue).Msg("discarding invalid venue quote")
				return nil
			}
			smp.price = price
			smp.ok = true
			return nil
		})
	}
	_ = g.Wait()

	valid := samples[:0]
	for _, smp := range samples {
		if smp.ok {
			valid = append(valid, smp)
		}
	}
	return valid
}

// pickVenues draws distinct venues for a chain, or all of them when the chain
// has fewer than SamplesPerChain.
func (s *Scanner) pickVenues(asset string, c domain.Chain) []string {
	venues := c.Venues
	if lister, ok := s.source.(VenueLister); ok {
		venues = lister.Venues(asset, c.ID)
	}
	n := min(s.opts.SamplesPerChain, len(venues))
	if n == 0 {
		return nil
	}

	s.mu.Lock()
	perm := s.rng.Perm(len(venues))
	s.mu.Unlock()

	picked := make([]string, n)
	for i := range n {
		picked[i] = venues[perm[i]]
	}
	return picked
}

// pairUp compares every pair of samples. The cheaper side is the buy leg;
// equal prices produce nothing.
func (s *Scanner) pairUp(asset string, samples []venueSample, minProfitBps float64, ts int64) []domain.ArbitrageOpportunity {
	var out []domain.ArbitrageOpportunity
	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			buy, sell := samples[i], samples[j]
			if buy.price == sell.price {
				continue
			}
			if buy.price > sell.price {
				buy, sell = sell, buy
			}

			spread := spreadBps(buy.price, sell.price)
			cost := estimatedCostBps(buy.chain, sell.chain)
			net := spread - cost
			if net < minProfitBps {
				continue
			}
			out = append(out, domain.ArbitrageOpportunity{
				ID:                  s.newID(),
				Asset:               strings.ToUpper(asset),
				BuyChain:            buy.chain.ID,
				BuyVenue:            buy.venue,
				BuyPrice:            buy.price,
				SellChain:           sell.chain.ID,
				SellVenue:           sell.venue,
				SellPrice:           sell.price,
				SpreadBps:           spread,
				NetProfitBps:        net,
				EstimatedGasCostBps: cost,
				Confidence:          confidenceScore(spread, buy.chain, sell.chain),
				Timestamp:           ts,
			})
		}
	}
	return out
}
