package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	exp := time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC)

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected absent entry, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "k", []byte("v1"), exp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Put(ctx, "k", []byte("v2"), exp.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected entry, got ok=%v err=%v", ok, err)
	}
	if string(got.Value) != "v2" || !got.ExpiresAt.Equal(exp.Add(time.Minute)) {
		t.Fatalf("last write should win, got %+v", got)
	}
}

func TestMemoryStoreKeepsExpiredEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	past := time.Now().Add(-time.Hour)
	_ = store.Put(ctx, "old", []byte("stale"), past)

	got, ok, _ := store.Get(ctx, "old")
	if !ok || string(got.Value) != "stale" {
		t.Fatalf("expired entry should remain readable, got %+v ok=%v", got, ok)
	}
	if got.Fresh(time.Now()) {
		t.Fatal("entry should report as expired")
	}
}

func TestMemoryStoreConcurrentWriters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	exp := time.Now().Add(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(ctx, "shared", []byte(fmt.Sprintf("v%d", i)), exp)
			_, _, _ = store.Get(ctx, "shared")
		}(i)
	}
	wg.Wait()

	if _, ok, _ := store.Get(ctx, "shared"); !ok {
		t.Fatal("expected an entry after concurrent writes")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rdb := newFakeRedis()
	store := NewRedisStore(rdb)
	exp := time.Unix(1735689600, 123)

	if err := store.Put(ctx, "oracle:refprice:ETH", []byte(`{"price_usd":1}`), exp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := store.Get(ctx, "oracle:refprice:ETH")
	if err != nil || !ok {
		t.Fatalf("expected entry, got ok=%v err=%v", ok, err)
	}
	if string(got.Value) != `{"price_usd":1}` || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected entry: %+v", got)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	t.Parallel()

	store := NewRedisStore(newFakeRedis())
	if _, ok, err := store.Get(context.Background(), "nope"); ok || err != nil {
		t.Fatalf("expected absent entry, got ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreErrors(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	rdb.err = errors.New("boom")
	store := NewRedisStore(rdb)

	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected read error")
	}
	if err := store.Put(context.Background(), "k", []byte("v"), time.Now()); err == nil {
		t.Fatal("expected write error")
	}
}

func TestRedisStoreCorruptExpiry(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	rdb.data["k"] = map[string]string{"value": "v", "expires_at": "soon"}
	store := NewRedisStore(rdb)

	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected parse error for corrupt expiry")
	}
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]map[string]string)}
}

func (f *fakeRedis) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	h, ok := f.data[key]
	if !ok {
		h = make(map[string]string)
		f.data[key] = h
	}
	fields, _ := values[0].(map[string]interface{})
	for k, v := range fields {
		switch tv := v.(type) {
		case []byte:
			h[k] = string(tv)
		default:
			h[k] = fmt.Sprint(tv)
		}
	}
	return redis.NewIntResult(int64(len(fields)), nil)
}

func (f *fakeRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	out := make(map[string]string, len(f.data[key]))
	for k, v := range f.data[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}
