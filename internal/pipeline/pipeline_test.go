package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adocshq/adocs/internal/cache"
	"github.com/adocshq/adocs/internal/config"
	"github.com/adocshq/adocs/internal/generation"
	"github.com/adocshq/adocs/internal/history"
	"github.com/adocshq/adocs/internal/injection"
	"github.com/adocshq/adocs/internal/knowledge"
	"github.com/adocshq/adocs/internal/llm"
	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/sections"
	"github.com/adocshq/adocs/internal/storage"
)

type fixedEmbedder struct{ calls int }

func (f *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fixedEmbedder) Dimensions() int { return 2 }
func (f *fixedEmbedder) Name() string    { return "fixed" }

type countingClient struct {
	calls int
	reply string
}

func (c *countingClient) Complete(_ context.Context, _ llm.Request) (*llm.Response, error) {
	c.calls++
	return &llm.Response{Content: c.reply, InputTokens: 5, OutputTokens: 3}, nil
}

func (c *countingClient) Name() string { return "counting" }

func testSnapshot() *knowledge.Snapshot {
	return &knowledge.Snapshot{
		Version:      "20240601T120000Z",
		EmbedderName: "fixed",
		Dimensions:   2,
		Records: []knowledge.Record{
			{
				RepoURL:   "https://github.com/ex/close",
				Embedding: []float32{1, 0},
				Structure: sections.Structure{Sections: []sections.Section{{Name: "Intro"}}},
			},
			{
				RepoURL:   "https://github.com/ex/far",
				Embedding: []float32{0, 1},
				Structure: sections.Structure{Sections: []sections.Section{{Name: "Other"}}},
			},
		},
	}
}

func testService(t *testing.T, client llm.Client, overridesYAML string) (*Service, *storage.MemStore) {
	t.Helper()

	store := storage.NewMemStore()
	holder := &knowledge.Holder{}
	holder.Publish(testSnapshot())

	repoCfgPath := filepath.Join(t.TempDir(), "repository_config.yaml")
	if overridesYAML != "" {
		if err := os.WriteFile(repoCfgPath, []byte(overridesYAML), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	db, err := history.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	svc := &Service{
		Embedder:  &fixedEmbedder{},
		Executor:  generation.NewExecutor(client, "test-model", 0),
		Injector:  injection.NewEngine(store),
		Snapshots: holder,
		Repos:     config.NewRepoConfigStore(repoCfgPath),
		Cache:     cache.New(store),
		History:   history.NewStore(db),
		TopK:      1,
	}
	return svc, store
}

func testMeta() *metadata.RepoMetadata {
	return &metadata.RepoMetadata{
		RepoURL:  "https://github.com/acme/payments",
		Overview: "Payment processing",
	}
}

const reply = `{"sections":[{"name":"Overview"},{"name":"Setup"}]}`

func TestGenerateEndToEnd(t *testing.T) {
	client := &countingClient{reply: reply}
	svc, _ := testService(t, client, "")

	res, err := svc.GenerateDocumentation(context.Background(), testMeta())
	if err != nil {
		t.Fatalf("GenerateDocumentation: %v", err)
	}
	if res.CacheHit {
		t.Error("first call should not be a cache hit")
	}
	if len(res.Structure.Sections) != 2 {
		t.Fatalf("sections = %d", len(res.Structure.Sections))
	}
	// Generated sections got default priorities assigned.
	if res.Structure.Sections[0].Priority == 0 {
		t.Error("default priorities not assigned")
	}
	// Nearest exemplar retrieved.
	if len(res.Exemplars) != 1 || res.Exemplars[0] != "https://github.com/ex/close" {
		t.Errorf("exemplars = %v", res.Exemplars)
	}
	if res.Snapshot != "20240601T120000Z" {
		t.Errorf("snapshot = %q", res.Snapshot)
	}
}

func TestGenerateUsesCache(t *testing.T) {
	client := &countingClient{reply: reply}
	overrides := `
repositories:
  "https://github.com/acme/payments":
    injection_strategy: prepend
global_config:
  cache_ttl: 3600
`
	svc, _ := testService(t, client, overrides)
	ctx := context.Background()

	if _, err := svc.GenerateDocumentation(ctx, testMeta()); err != nil {
		t.Fatal(err)
	}
	res, err := svc.GenerateDocumentation(ctx, testMeta())
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Error("second call should hit the cache")
	}
	if client.calls != 1 {
		t.Errorf("LLM called %d times, want 1", client.calls)
	}
}

func TestGenerateNoCacheWithoutConfig(t *testing.T) {
	// Without a repository config there is no TTL, so nothing is cached.
	client := &countingClient{reply: reply}
	svc, _ := testService(t, client, "")
	ctx := context.Background()

	if _, err := svc.GenerateDocumentation(ctx, testMeta()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateDocumentation(ctx, testMeta()); err != nil {
		t.Fatal(err)
	}
	if client.calls != 2 {
		t.Errorf("LLM called %d times, want 2 without caching", client.calls)
	}
}

func TestGenerateConfigErrorBeforeLLM(t *testing.T) {
	client := &countingClient{reply: reply}
	overrides := `
repositories:
  "https://github.com/acme/payments":
    injection_strategy: sideways
`
	svc, _ := testService(t, client, overrides)

	_, err := svc.GenerateDocumentation(context.Background(), testMeta())
	if err == nil {
		t.Fatal("expected config error")
	}
	if !IsConfigError(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	if client.calls != 0 {
		t.Errorf("LLM called %d times, want 0 on invalid config", client.calls)
	}
}

func TestGenerateAppliesInjection(t *testing.T) {
	client := &countingClient{reply: reply}
	overrides := `
repositories:
  "https://github.com/acme/payments":
    injection_strategy: append
    custom_sections:
      - name: "Runbook"
        gcs_path: "custom_docs/acme_payments/runbook.md"
`
	svc, store := testService(t, client, overrides)
	ctx := context.Background()
	if err := store.Write(ctx, "custom_docs/acme_payments/runbook.md", []byte("on call notes")); err != nil {
		t.Fatal(err)
	}

	res, err := svc.GenerateDocumentation(ctx, testMeta())
	if err != nil {
		t.Fatal(err)
	}
	last := res.Structure.Sections[len(res.Structure.Sections)-1]
	if last.Name != "Runbook" || !last.IsCustom || last.Content != "on call notes" {
		t.Errorf("appended section = %+v", last)
	}
	if res.Strategy != "append" {
		t.Errorf("strategy = %q", res.Strategy)
	}
}

func TestGenerateWithoutSnapshot(t *testing.T) {
	client := &countingClient{reply: reply}
	svc, _ := testService(t, client, "")
	svc.Snapshots = &knowledge.Holder{}
	emb := svc.Embedder.(*fixedEmbedder)

	res, err := svc.GenerateDocumentation(context.Background(), testMeta())
	if err != nil {
		t.Fatalf("empty knowledge base should not block generation: %v", err)
	}
	if len(res.Exemplars) != 0 {
		t.Errorf("exemplars = %v, want none", res.Exemplars)
	}
	if emb.calls != 0 {
		t.Error("no embedding call expected without a snapshot")
	}
}

func TestGenerateRecordsHistory(t *testing.T) {
	client := &countingClient{reply: reply}
	svc, _ := testService(t, client, "")
	ctx := context.Background()

	if _, err := svc.GenerateDocumentation(ctx, testMeta()); err != nil {
		t.Fatal(err)
	}
	runs, err := svc.History.Query(ctx, history.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].RepoURL != "https://github.com/acme/payments" || runs[0].SectionCount != 2 {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestGenerateRecordsHistoryOnCacheHit(t *testing.T) {
	client := &countingClient{reply: reply}
	overrides := `
repositories:
  "https://github.com/acme/payments":
    injection_strategy: prepend
global_config:
  cache_ttl: 3600
`
	svc, _ := testService(t, client, overrides)
	ctx := context.Background()

	if _, err := svc.GenerateDocumentation(ctx, testMeta()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GenerateDocumentation(ctx, testMeta()); err != nil {
		t.Fatal(err)
	}

	runs, err := svc.History.Query(ctx, history.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	// Newest first: runs[0] is the cached call. Its row reflects the
	// served result, not an empty compute.
	hit := runs[0]
	if !hit.CacheHit {
		t.Fatal("newest run should be the cache hit")
	}
	if runs[1].CacheHit {
		t.Fatal("first run should not be a cache hit")
	}
	if hit.SectionCount != 2 {
		t.Errorf("cache-hit section_count = %d, want 2", hit.SectionCount)
	}
	if len(hit.Exemplars) != 1 || hit.Exemplars[0] != "https://github.com/ex/close" {
		t.Errorf("cache-hit exemplars = %v", hit.Exemplars)
	}
	if hit.SnapshotVersion != "20240601T120000Z" {
		t.Errorf("cache-hit snapshot_version = %q", hit.SnapshotVersion)
	}
}

func TestGenerateRejectsMissingURL(t *testing.T) {
	svc, _ := testService(t, &countingClient{reply: reply}, "")
	if _, err := svc.GenerateDocumentation(context.Background(), &metadata.RepoMetadata{}); err == nil {
		t.Error("expected error for missing repo URL")
	}
}

func TestRebuildPublishesAndRestores(t *testing.T) {
	store := storage.NewMemStore()
	holder := &knowledge.Holder{}
	r := &Rebuilder{
		Builder:   knowledge.NewBuilder(&fixedEmbedder{}),
		Store:     store,
		Snapshots: holder,
	}
	ctx := context.Background()

	raws := []metadata.RepoMetadata{
		{RepoURL: "https://github.com/ex/a", Overview: "A service"},
	}
	exemplars := map[string]sections.Structure{
		"https://github.com/ex/a": {Sections: []sections.Section{{Name: "Intro"}}},
	}

	snap, err := r.Rebuild(ctx, raws, exemplars)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if holder.Load() != snap {
		t.Error("snapshot not published")
	}

	// A fresh holder restores the persisted snapshot.
	r2 := &Rebuilder{Store: store, Snapshots: &knowledge.Holder{}}
	restored, err := r2.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored == nil || restored.Version != snap.Version {
		t.Errorf("restored = %+v, want version %s", restored, snap.Version)
	}
}
