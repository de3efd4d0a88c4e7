package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adocshq/adocs/internal/storage"
)

// Entry is the stored shape of a cached value. TTL accounting uses the
// stored creation time, so entries survive process restarts.
type Entry struct {
	Key        string          `json:"key"`
	CreatedAt  time.Time       `json:"created_at"`
	TTLSeconds int             `json:"ttl_seconds"`
	Value      json.RawMessage `json:"value"`
}

func (e *Entry) expired(now time.Time) bool {
	if e.TTLSeconds <= 0 {
		return true
	}
	return now.Sub(e.CreatedAt) >= time.Duration(e.TTLSeconds)*time.Second
}

// Cache is a TTL cache over a content store. Expiry is lazy: entries are
// checked on read and deleted when stale, nothing runs in the background.
type Cache struct {
	store storage.ContentStore
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a cache backed by the given store.
func New(store storage.ContentStore) *Cache {
	return &Cache{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// keyLock returns the mutex for a cache key, creating it on first use.
// Serializing per key keeps concurrent misses from computing twice.
func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

// Get returns the cached value for fingerprint, or (nil, false) on a miss.
// Expired entries are deleted opportunistically and reported as misses.
func (c *Cache) Get(ctx context.Context, fingerprint string) (json.RawMessage, bool) {
	key := storage.CacheKey(fingerprint)

	data, err := c.store.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("cache: reading %s: %v", key, err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("cache: corrupt entry %s, dropping: %v", key, err)
		_ = c.store.Delete(ctx, key)
		return nil, false
	}

	if entry.expired(c.now()) {
		if err := c.store.Delete(ctx, key); err != nil {
			log.Printf("cache: deleting expired %s: %v", key, err)
		}
		return nil, false
	}
	return entry.Value, true
}

// Put stores a value under fingerprint with the given TTL. A TTL of zero
// or less disables caching for this write.
func (c *Cache) Put(ctx context.Context, fingerprint string, value json.RawMessage, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		return nil
	}
	key := storage.CacheKey(fingerprint)
	entry := Entry{
		Key:        key,
		CreatedAt:  c.now(),
		TTLSeconds: ttlSeconds,
		Value:      value,
	}
	data, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	return c.store.Write(ctx, key, data)
}

// GetOrCompute returns the cached value for fingerprint, computing and
// storing it on a miss. Concurrent callers with the same fingerprint are
// serialized so compute runs once. Compute errors are returned without
// caching; a failed cache write is logged, not surfaced, since the
// computed value is still good.
func (c *Cache) GetOrCompute(ctx context.Context, fingerprint string, ttlSeconds int, compute func(context.Context) (json.RawMessage, error)) (json.RawMessage, bool, error) {
	l := c.keyLock(fingerprint)
	l.Lock()
	defer l.Unlock()

	if v, ok := c.Get(ctx, fingerprint); ok {
		return v, true, nil
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(ctx, fingerprint, v, ttlSeconds); err != nil {
		log.Printf("cache: storing %s: %v", fingerprint, err)
	}
	return v, false, nil
}

// Invalidate removes the entry for fingerprint, if present.
func (c *Cache) Invalidate(ctx context.Context, fingerprint string) error {
	return c.store.Delete(ctx, storage.CacheKey(fingerprint))
}
