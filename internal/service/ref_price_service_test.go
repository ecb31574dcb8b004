package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"market-oracle/internal/cache"
	"market-oracle/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var (
	testTracer = trace.NewNoopTracerProvider().Tracer("test")
	testLogger = zerolog.Nop()
	testRetry  = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
	testNow    = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newTestRefPriceService(fetcher RefPriceFetcher, store cache.Store) *RefPriceService {
	svc := NewRefPriceService(testTracer, testLogger, fetcher, store, 5*time.Minute, testRetry)
	svc.now = func() time.Time { return testNow }
	return svc
}

func seedQuote(t *testing.T, store cache.Store, quote domain.PriceQuote, expiresAt time.Time) {
	t.Helper()
	data, err := json.Marshal(quote)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := store.Put(context.Background(), RefPriceCacheKey(quote.Symbol), data, expiresAt); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestRefPriceService_CacheHitSkipsUpstream(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	seedQuote(t, store, domain.PriceQuote{Symbol: "ETH", PriceUSD: 3100, Source: "coingecko"}, testNow.Add(time.Minute))
	fetcher := &mockFetcher{}
	svc := newTestRefPriceService(fetcher, store)

	got, err := svc.GetPrice(context.Background(), "eth")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceUSD != 3100 || got.Stale {
		t.Fatalf("unexpected quote: %+v", got)
	}
	if fetcher.callCount() != 0 {
		t.Fatalf("expected no upstream calls, got %d", fetcher.callCount())
	}
}

func TestRefPriceService_TwiceWithinTTLHitsUpstreamOnce(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	fetcher := &mockFetcher{quote: &domain.PriceQuote{Symbol: "ETH", PriceUSD: 3500, Source: "coingecko"}}
	svc := newTestRefPriceService(fetcher, store)

	for i := 0; i < 2; i++ {
		got, err := svc.GetPrice(context.Background(), "eth")
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got.PriceUSD != 3500 {
			t.Fatalf("call %d: unexpected quote: %+v", i, got)
		}
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", fetcher.callCount())
	}

	entry, ok, _ := store.Get(context.Background(), "oracle:refprice:ETH")
	if !ok {
		t.Fatal("quote not cached")
	}
	if !entry.ExpiresAt.Equal(testNow.Add(5 * time.Minute)) {
		t.Fatalf("expected 5 minute ttl, got %v", entry.ExpiresAt)
	}
}

func TestRefPriceService_ExpiredEntryRefetches(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	seedQuote(t, store, domain.PriceQuote{Symbol: "BTC", PriceUSD: 60000}, testNow.Add(-time.Second))
	fetcher := &mockFetcher{quote: &domain.PriceQuote{Symbol: "BTC", PriceUSD: 65000}}
	svc := newTestRefPriceService(fetcher, store)

	got, err := svc.GetPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceUSD != 65000 || got.Stale {
		t.Fatalf("expected fresh upstream quote, got %+v", got)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("expected one upstream call, got %d", fetcher.callCount())
	}
}

func TestRefPriceService_RateLimitedServesStale(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	cached := domain.PriceQuote{Symbol: "ETH", PriceUSD: 2999.5, Timestamp: 1, Source: "coingecko"}
	seedQuote(t, store, cached, testNow.Add(-time.Hour))
	fetcher := &mockFetcher{errs: []error{domain.ErrRateLimited, domain.ErrRateLimited, domain.ErrRateLimited}}
	svc := newTestRefPriceService(fetcher, store)

	got, err := svc.GetPrice(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Stale {
		t.Fatal("expected stale flag")
	}
	if got.PriceUSD != cached.PriceUSD || got.Timestamp != cached.Timestamp || got.Source != cached.Source {
		t.Fatalf("expected cached quote, got %+v", got)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("stale fallback should short-circuit retries, got %d calls", fetcher.callCount())
	}
}

func TestRefPriceService_LogsWithComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	store := cache.NewMemoryStore()
	seedQuote(t, store, domain.PriceQuote{Symbol: "ETH", PriceUSD: 3000}, testNow.Add(-time.Hour))
	fetcher := &mockFetcher{errs: []error{domain.ErrRateLimited}}
	svc := NewRefPriceService(testTracer, zerolog.New(&buf), fetcher, store, 5*time.Minute, testRetry)
	svc.now = func() time.Time { return testNow }

	if _, err := svc.GetPrice(context.Background(), "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"component":"refprice"`) {
		t.Fatalf("expected component field in log output, got %q", buf.String())
	}
}

func TestRefPriceService_RateLimitedWithoutCacheBoundsAttempts(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{errs: []error{
		domain.ErrRateLimited, domain.ErrRateLimited, domain.ErrRateLimited, domain.ErrRateLimited,
	}}
	svc := newTestRefPriceService(fetcher, cache.NewMemoryStore())

	_, err := svc.GetPrice(context.Background(), "ETH")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("rate limiting should not surface to callers, got %v", err)
	}
	if fetcher.callCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", fetcher.callCount())
	}
}

func TestRefPriceService_RecoversAfterRateLimit(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{
		errs:  []error{domain.ErrRateLimited, domain.ErrRateLimited},
		quote: &domain.PriceQuote{Symbol: "SOL", PriceUSD: 150},
	}
	store := cache.NewMemoryStore()
	svc := newTestRefPriceService(fetcher, store)

	got, err := svc.GetPrice(context.Background(), "SOL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceUSD != 150 {
		t.Fatalf("unexpected quote: %+v", got)
	}
	if fetcher.callCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", fetcher.callCount())
	}
	if _, ok, _ := store.Get(context.Background(), "oracle:refprice:SOL"); !ok {
		t.Fatal("recovered quote should be cached")
	}
}

func TestRefPriceService_NonRateLimitFailureDoesNotRetry(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	seedQuote(t, store, domain.PriceQuote{Symbol: "ETH", PriceUSD: 1}, testNow.Add(-time.Hour))
	fetcher := &mockFetcher{errs: []error{errors.New("coingecko API error 502")}}
	svc := newTestRefPriceService(fetcher, store)

	_, err := svc.GetPrice(context.Background(), "ETH")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("expected a single attempt, got %d", fetcher.callCount())
	}
}

func TestRefPriceService_UnknownSymbol(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	svc := newTestRefPriceService(fetcher, cache.NewMemoryStore())

	if _, err := svc.GetPrice(context.Background(), "FAKE"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if fetcher.callCount() != 0 {
		t.Fatalf("unknown symbols must not reach upstream, got %d calls", fetcher.callCount())
	}
}

func TestRefPriceService_StoreErrorsFallThrough(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{quote: &domain.PriceQuote{Symbol: "ETH", PriceUSD: 3000}}
	svc := newTestRefPriceService(fetcher, failingStore{})

	got, err := svc.GetPrice(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("store failures should not fail the request: %v", err)
	}
	if got.PriceUSD != 3000 {
		t.Fatalf("unexpected quote: %+v", got)
	}
}

func TestRefPriceService_NilStore(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{quote: &domain.PriceQuote{Symbol: "ETH", PriceUSD: 3000}}
	svc := newTestRefPriceService(fetcher, nil)

	if _, err := svc.GetPrice(context.Background(), "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetPrice(context.Background(), "ETH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.callCount() != 2 {
		t.Fatalf("without a store every call goes upstream, got %d", fetcher.callCount())
	}
}

func TestRefPriceService_GetPricesPartialFailure(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{quote: &domain.PriceQuote{PriceUSD: 1}}
	svc := newTestRefPriceService(fetcher, cache.NewMemoryStore())

	quotes, err := svc.GetPrices(context.Background(), []string{"usdc", "FAKE", "usdt"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected joined not-found error, got %v", err)
	}
	if len(quotes) != 2 || quotes["USDC"] == nil || quotes["USDT"] == nil {
		t.Fatalf("expected USDC and USDT quotes, got %+v", quotes)
	}
}

func TestRetryPolicyBackOffDoubles(t *testing.T) {
	b := RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 250 * time.Millisecond}.backOff()
	b.Reset()

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Fatalf("step %d: expected %v, got %v", i, w, got)
		}
	}
}

// mockFetcher returns errs in order, then quote. The quote symbol follows
// the requested symbol.
type mockFetcher struct {
	mu    sync.Mutex
	errs  []error
	quote *domain.PriceQuote
	calls int
}

func (m *mockFetcher) FetchPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return nil, err
	}
	if m.quote == nil {
		return nil, errors.New("no quote configured")
	}
	q := *m.quote
	q.Symbol = domain.NormalizeSymbol(symbol)
	return &q, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) (domain.CacheEntry, bool, error) {
	return domain.CacheEntry{}, false, errors.New("store down")
}

func (failingStore) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	return errors.New("store down")
}
