package knowledge

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/adocshq/adocs/internal/embeddings"
	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/sections"
)

// embedBatchSize bounds how many corpus texts go to the embedder per call,
// so progress is reported while the embed pass runs.
const embedBatchSize = 32

// Builder constructs knowledge-base snapshots. Building is the only way to
// change the knowledge base; there is no incremental upsert.
type Builder struct {
	embedder embeddings.Embedder
	now      func() time.Time
	progress func(done, total int, repoURL string)
}

// NewBuilder creates a Builder using the given embedder.
func NewBuilder(embedder embeddings.Embedder) *Builder {
	return &Builder{embedder: embedder, now: time.Now}
}

// SetProgress registers a callback invoked after each record is embedded.
// Passing nil disables reporting.
func (b *Builder) SetProgress(fn func(done, total int, repoURL string)) {
	b.progress = fn
}

// Build creates a snapshot from raw repository metadata cross-referenced
// with the exemplar documentation structures. Records without an exemplar
// are skipped (counted and logged, not fatal). Any embedding failure aborts
// the whole build; no partial snapshot is ever produced.
func (b *Builder) Build(ctx context.Context, raws []metadata.RepoMetadata, exemplars map[string]sections.Structure) (*Snapshot, error) {
	var (
		records []Record
		skipped int
	)
	for _, raw := range raws {
		if raw.RepoURL == "" {
			skipped++
			continue
		}
		structure, ok := exemplars[raw.RepoURL]
		if !ok {
			skipped++
			continue
		}
		records = append(records, Record{
			RepoURL:    raw.RepoURL,
			Metadata:   raw,
			CorpusText: raw.CorpusText(),
			Structure:  structure,
		})
	}
	if skipped > 0 {
		log.Printf("knowledge base build: skipped %d record(s) without exemplar structures", skipped)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to build: %d raw record(s), all skipped", len(raws))
	}

	for start := 0; start < len(records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.CorpusText
		}
		vectors, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding records %d-%d of %d: %w", start+1, end, len(records), err)
		}
		if len(vectors) != len(batch) {
			return nil, &embeddings.ProviderError{
				Model: b.embedder.Name(),
				Err:   fmt.Errorf("got %d vectors for %d records", len(vectors), len(batch)),
			}
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
			if b.progress != nil {
				b.progress(start+i+1, len(records), batch[i].RepoURL)
			}
		}
	}

	builtAt := b.now().UTC()
	return &Snapshot{
		Version:      builtAt.Format("20060102T150405Z"),
		EmbedderName: b.embedder.Name(),
		Dimensions:   b.embedder.Dimensions(),
		BuiltAt:      builtAt,
		Records:      records,
	}, nil
}

func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
