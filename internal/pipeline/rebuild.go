package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/adocshq/adocs/internal/config"
	"github.com/adocshq/adocs/internal/knowledge"
	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/sections"
	"github.com/adocshq/adocs/internal/storage"
)

// Rebuilder constructs knowledge-base snapshots and publishes them to the
// serving path.
type Rebuilder struct {
	Builder   *knowledge.Builder
	Store     storage.ContentStore
	Snapshots *knowledge.Holder
}

// Rebuild builds a fresh snapshot from raw records and exemplars, persists
// it, swaps it in atomically, and garbage-collects superseded snapshots.
// The old snapshot keeps serving until the new one is verified loadable.
func (r *Rebuilder) Rebuild(ctx context.Context, raws []metadata.RepoMetadata, exemplars map[string]sections.Structure) (*knowledge.Snapshot, error) {
	snap, err := r.Builder.Build(ctx, raws, exemplars)
	if err != nil {
		return nil, fmt.Errorf("building knowledge base: %w", err)
	}

	if err := knowledge.Save(ctx, r.Store, snap); err != nil {
		return nil, fmt.Errorf("persisting snapshot %s: %w", snap.Version, err)
	}

	r.Snapshots.Publish(snap)
	log.Printf("pipeline: published knowledge base %s (%d records, dim %d)", snap.Version, len(snap.Records), snap.Dimensions)

	if err := knowledge.GC(ctx, r.Store, snap); err != nil {
		log.Printf("pipeline: garbage-collecting old snapshots: %v", err)
	}
	return snap, nil
}

// Restore loads the latest persisted snapshot into the serving path, if
// one exists. Called at startup.
func (r *Rebuilder) Restore(ctx context.Context) (*knowledge.Snapshot, error) {
	snap, err := knowledge.LoadLatest(ctx, r.Store)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}
	r.Snapshots.Publish(snap)
	log.Printf("pipeline: restored knowledge base %s (%d records)", snap.Version, len(snap.Records))
	return snap, nil
}

// ValidateConfig returns the violation list for a repository's effective
// configuration. An empty list means valid; a repository with no
// configuration is trivially valid.
func ValidateConfig(cfg *config.RepositoryConfig) []string {
	return config.ValidateRepositoryConfig(cfg)
}
