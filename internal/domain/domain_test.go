package domain

import (
	"testing"
	"time"
)

func TestCacheEntryFresh(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	fresh := CacheEntry{Key: "k", ExpiresAt: now.Add(time.Second)}
	expired := CacheEntry{Key: "k", ExpiresAt: now}

	if !fresh.Fresh(now) {
		t.Fatal("entry expiring in the future should be fresh")
	}
	if expired.Fresh(now) {
		t.Fatal("entry expiring at now should not be fresh")
	}
}

func TestLookupCoinGeckoIDCaseInsensitive(t *testing.T) {
	id, ok := LookupCoinGeckoID(" eth ")
	if !ok || id != "ethereum" {
		t.Fatalf("expected ethereum, got %q (%v)", id, ok)
	}
	if _, ok := LookupCoinGeckoID("NOPE"); ok {
		t.Fatal("unknown symbol should not resolve")
	}
}

func TestSupportedSymbolsMatchMap(t *testing.T) {
	if len(SupportedSymbols) != len(CoinGeckoID) {
		t.Fatalf("expected %d symbols, got %d", len(CoinGeckoID), len(SupportedSymbols))
	}
	for _, s := range SupportedSymbols {
		if _, ok := CoinGeckoID[s]; !ok {
			t.Errorf("symbol %s missing from CoinGeckoID", s)
		}
	}
}

func TestLookupChainAliases(t *testing.T) {
	tests := map[string]string{
		"eth":      "eth",
		"Ethereum": "eth",
		"matic":    "polygon",
		"POLYGON":  "polygon",
		"sol":      "solana",
	}
	for name, want := range tests {
		c, ok := LookupChain(name)
		if !ok || c.ID != want {
			t.Errorf("%s: expected %s, got %+v", name, want, c)
		}
	}
	if _, ok := LookupChain("fantom"); ok {
		t.Fatal("unknown chain should not resolve")
	}
}

func TestChainGasTable(t *testing.T) {
	eth, _ := LookupChain("eth")
	polygon, _ := LookupChain("polygon")
	if eth.GasCostBps != 30 || polygon.GasCostBps != 5 {
		t.Fatalf("unexpected gas table: eth=%v polygon=%v", eth.GasCostBps, polygon.GasCostBps)
	}
	if HighestGasChain() != "eth" {
		t.Fatalf("expected eth to be the highest gas chain, got %s", HighestGasChain())
	}
	for _, id := range SupportedChains() {
		c, _ := LookupChain(id)
		if len(c.Venues) == 0 {
			t.Errorf("chain %s has no venues", id)
		}
	}
}

func TestLookupDexFeeBps(t *testing.T) {
	if fee := LookupDexFeeBps("Curve"); fee != 4 {
		t.Fatalf("expected curve fee 4, got %v", fee)
	}
	if fee := LookupDexFeeBps("unknown-dex"); fee != DefaultDexFeeBps {
		t.Fatalf("expected default fee, got %v", fee)
	}
}
