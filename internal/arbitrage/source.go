package arbitrage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"market-oracle/internal/domain"
)

// PriceSource quotes asset on a specific chain and venue. basePrice is the
// asset's reference price; sources backed by live data may ignore it.
type PriceSource interface {
	VenuePrice(ctx context.Context, asset, chain, venue string, basePrice float64) (float64, error)
}

// VenueLister is implemented by sources that only cover some venues. The
// scanner samples from the listed venues instead of the chain table.
type VenueLister interface {
	Venues(asset, chain string) []string
}

// MaxSyntheticDeviation bounds synthetic venue dispersion around the base
// price (0.5%).
const MaxSyntheticDeviation = 0.005

// SyntheticSource perturbs the base price by a uniform factor in
// [-MaxSyntheticDeviation, +MaxSyntheticDeviation]. It stands in for live
// per-venue feeds.
type SyntheticSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSyntheticSource uses rng, or a randomly seeded generator when nil.
func NewSyntheticSource(rng *rand.Rand) *SyntheticSource {
	if rng == nil {
		rng = newRand()
	}
	return &SyntheticSource{rng: rng}
}

func (s *SyntheticSource) VenuePrice(_ context.Context, _, _, _ string, basePrice float64) (float64, error) {
	s.mu.Lock()
	u := s.rng.Float64()
	s.mu.Unlock()
	return basePrice * (1 + (2*u-1)*MaxSyntheticDeviation), nil
}

// PairRef names the DEX pair that quotes an asset on a chain and venue.
type PairRef struct {
	Asset string `json:"asset"`
	Chain string `json:"chain"`
	Venue string `json:"venue"`
	Pair  string `json:"pair"`
}

// PairRegistry indexes pair addresses by asset, chain and venue.
type PairRegistry struct {
	pairs  map[string]string
	venues map[string][]string
}

// registryKey resolves chain aliases to the canonical id. Unknown chains
// map to a key no entry can have.
func registryKey(asset, chain string) string {
	if c, ok := domain.LookupChain(chain); ok {
		chain = c.ID
	} else {
		chain = "?" + chain
	}
	return domain.NormalizeSymbol(asset) + "/" + chain
}

// NewPairRegistry indexes refs. Chains are canonicalized; refs on unknown
// chains are rejected.
func NewPairRegistry(refs []PairRef) (*PairRegistry, error) {
	r := &PairRegistry{pairs: make(map[string]string), venues: make(map[string][]string)}
	for _, ref := range refs {
		c, ok := domain.LookupChain(ref.Chain)
		if !ok {
			return nil, fmt.Errorf("pair registry: unknown chain %q: %w", ref.Chain, domain.ErrInvalidInput)
		}
		if ref.Asset == "" || ref.Venue == "" || ref.Pair == "" {
			return nil, fmt.Errorf("pair registry: incomplete entry %+v: %w", ref, domain.ErrInvalidInput)
		}
		key := registryKey(ref.Asset, c.ID)
		venue := strings.ToLower(ref.Venue)
		if _, dup := r.pairs[key+"/"+venue]; !dup {
			r.venues[key] = append(r.venues[key], venue)
		}
		r.pairs[key+"/"+venue] = ref.Pair
	}
	return r, nil
}

// LoadPairRegistry reads a JSON array of PairRef from path.
func LoadPairRegistry(path string) (*PairRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pair registry: %w", err)
	}
	var refs []PairRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parse pair registry %s: %w", path, err)
	}
	return NewPairRegistry(refs)
}

func (r *PairRegistry) Lookup(asset, chain, venue string) (string, bool) {
	addr, ok := r.pairs[registryKey(asset, chain)+"/"+strings.ToLower(venue)]
	return addr, ok
}

func (r *PairRegistry) Len() int { return len(r.pairs) }

type DexSnapshotReader interface {
	GetPairSnapshot(ctx context.Context, chain, pairAddress string) (*domain.DexSnapshot, error)
}

// LiveSource quotes venues from the DEX pair oracle.
type LiveSource struct {
	dex   DexSnapshotReader
	pairs *PairRegistry
}

func NewLiveSource(dex DexSnapshotReader, pairs *PairRegistry) *LiveSource {
	return &LiveSource{dex: dex, pairs: pairs}
}

func (s *LiveSource) Venues(asset, chain string) []string {
	return s.pairs.venues[registryKey(asset, chain)]
}

func (s *LiveSource) VenuePrice(ctx context.Context, asset, chain, venue string, _ float64) (float64, error) {
	addr, ok := s.pairs.Lookup(asset, chain, venue)
	if !ok {
		return 0, fmt.Errorf("no pair for %s on %s/%s: %w", asset, chain, venue, domain.ErrNotFound)
	}
	snap, err := s.dex.GetPairSnapshot(ctx, chain, addr)
	if err != nil {
		return 0, err
	}
	if snap.PriceUSD <= 0 {
		return 0, fmt.Errorf("non-positive price for %s on %s/%s: %w", asset, chain, venue, domain.ErrUpstreamUnavailable)
	}
	return snap.PriceUSD, nil
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
