package knowledge

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/adocshq/adocs/internal/storage"
)

func init() {
	// Metadata Extra fields decoded from JSON carry these dynamic types.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// Encode serializes a snapshot to its persisted artifact form.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("encoding snapshot %s: %w", s.Version, err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes a snapshot from its persisted artifact form.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}

// Holder publishes the live snapshot to the serving path. Swaps are atomic:
// readers see either the old snapshot in full or the new one in full.
type Holder struct {
	ptr atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil if none has been published.
func (h *Holder) Load() *Snapshot { return h.ptr.Load() }

// Publish atomically replaces the current snapshot.
func (h *Holder) Publish(s *Snapshot) { h.ptr.Store(s) }

// Save persists the snapshot through the content store under the
// knowledge_base/{version}.snapshot key and verifies it reloads cleanly
// before reporting success.
func Save(ctx context.Context, store storage.ContentStore, s *Snapshot) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	key := storage.SnapshotKey(s.Version)
	if err := store.Write(ctx, key, data); err != nil {
		return fmt.Errorf("persisting snapshot %s: %w", s.Version, err)
	}

	// Round-trip check: the old snapshot is only garbage-collected once the
	// new artifact is confirmed loadable.
	readBack, err := store.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("verifying snapshot %s: %w", s.Version, err)
	}
	if _, err := Decode(readBack); err != nil {
		return fmt.Errorf("verifying snapshot %s: %w", s.Version, err)
	}
	return nil
}

// LoadLatest reads the most recent persisted snapshot, or nil if none exist.
// Snapshot versions are UTC timestamps, so lexical key order is age order.
func LoadLatest(ctx context.Context, store storage.ContentStore) (*Snapshot, error) {
	keys, err := store.List(ctx, storage.SnapshotPrefix())
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	latest := keys[len(keys)-1]
	data, err := store.Read(ctx, latest)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", latest, err)
	}
	return Decode(data)
}

// GC deletes every persisted snapshot other than keep's version. Called
// after a successful Save+Publish so old artifacts don't accumulate.
func GC(ctx context.Context, store storage.ContentStore, keep *Snapshot) error {
	keys, err := store.List(ctx, storage.SnapshotPrefix())
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	keepKey := storage.SnapshotKey(keep.Version)
	for _, k := range keys {
		if k == keepKey {
			continue
		}
		if err := store.Delete(ctx, k); err != nil {
			log.Printf("snapshot gc: could not delete %s: %v", k, err)
		}
	}
	return nil
}
