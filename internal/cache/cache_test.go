package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adocshq/adocs/internal/storage"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache() (*Cache, *storage.MemStore, *fakeClock) {
	store := storage.NewMemStore()
	clock := newFakeClock()
	c := New(store)
	c.now = clock.Now
	return c, store, clock
}

func TestGetMiss(t *testing.T) {
	c, _, _ := newTestCache()
	if _, ok := c.Get(context.Background(), "fp1"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestPutGetWithinTTL(t *testing.T) {
	c, _, clock := newTestCache()
	ctx := context.Background()

	val := json.RawMessage(`{"sections":[]}`)
	if err := c.Put(ctx, "fp1", val, 3600); err != nil {
		t.Fatalf("Put: %v", err)
	}

	clock.Advance(59 * time.Minute)
	got, ok := c.Get(ctx, "fp1")
	if !ok {
		t.Fatal("expected hit inside TTL")
	}
	if string(got) != string(val) {
		t.Errorf("got %s, want %s", got, val)
	}
}

func TestExpiredEntryIsMissAndDeleted(t *testing.T) {
	c, store, clock := newTestCache()
	ctx := context.Background()

	if err := c.Put(ctx, "fp1", json.RawMessage(`1`), 60); err != nil {
		t.Fatal(err)
	}
	clock.Advance(61 * time.Second)

	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Error("expected miss after TTL elapsed")
	}
	// Expired entry was removed from the backing store.
	if _, err := store.Read(ctx, storage.CacheKey("fp1")); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected entry deleted from store, got err=%v", err)
	}
}

func TestExpiryBoundaryIsExclusive(t *testing.T) {
	c, _, clock := newTestCache()
	ctx := context.Background()

	if err := c.Put(ctx, "fp1", json.RawMessage(`1`), 60); err != nil {
		t.Fatal(err)
	}
	// Exactly at the TTL the entry counts as expired.
	clock.Advance(60 * time.Second)
	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Error("entry at exactly TTL should be expired")
	}
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()

	if err := c.Put(ctx, "fp1", json.RawMessage(`1`), 0); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries, want 0 with zero TTL", store.Len())
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()

	if err := store.Write(ctx, storage.CacheKey("fp1"), []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Error("corrupt entry should be a miss")
	}
	if store.Len() != 0 {
		t.Error("corrupt entry should be dropped")
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c, _, _ := newTestCache()
	ctx := context.Background()

	var calls int32
	compute := func(context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		return json.RawMessage(`"v"`), nil
	}

	v, hit, err := c.GetOrCompute(ctx, "fp1", 3600, compute)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first call should be a miss")
	}
	if string(v) != `"v"` {
		t.Errorf("got %s", v)
	}

	_, hit, err = c.GetOrCompute(ctx, "fp1", 3600, compute)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second call should be a hit")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times, want 1", n)
	}
}

func TestGetOrComputeRecomputesAfterExpiry(t *testing.T) {
	c, _, clock := newTestCache()
	ctx := context.Background()

	var calls int32
	compute := func(context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		return json.RawMessage(`"v"`), nil
	}

	if _, _, err := c.GetOrCompute(ctx, "fp1", 60, compute); err != nil {
		t.Fatal(err)
	}
	clock.Advance(61 * time.Second)

	_, hit, err := c.GetOrCompute(ctx, "fp1", 60, compute)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("call after TTL expiry should be a miss")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("compute ran %d times, want 2 after expiry", n)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c, store, _ := newTestCache()
	ctx := context.Background()

	wantErr := errors.New("boom")
	_, _, err := c.GetOrCompute(ctx, "fp1", 3600, func(context.Context) (json.RawMessage, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want boom", err)
	}
	if store.Len() != 0 {
		t.Error("failed compute must not be cached")
	}
}

func TestGetOrComputeSerializesPerKey(t *testing.T) {
	c, _, _ := newTestCache()
	ctx := context.Background()

	var calls int32
	compute := func(context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return json.RawMessage(`"v"`), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := c.GetOrCompute(ctx, "same", 3600, compute); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("compute ran %d times for one key, want 1", n)
	}
}

func TestInvalidate(t *testing.T) {
	c, _, _ := newTestCache()
	ctx := context.Background()

	if err := c.Put(ctx, "fp1", json.RawMessage(`1`), 3600); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "fp1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(ctx, "fp1"); ok {
		t.Error("expected miss after invalidation")
	}
	// Invalidating a missing key is not an error.
	if err := c.Invalidate(ctx, "absent"); err != nil {
		t.Errorf("Invalidate(absent) = %v", err)
	}
}
