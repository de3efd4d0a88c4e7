package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adocshq/adocs/internal/cache"
	"github.com/adocshq/adocs/internal/config"
	"github.com/adocshq/adocs/internal/embeddings"
	"github.com/adocshq/adocs/internal/generation"
	"github.com/adocshq/adocs/internal/history"
	"github.com/adocshq/adocs/internal/injection"
	"github.com/adocshq/adocs/internal/knowledge"
	"github.com/adocshq/adocs/internal/metadata"
	"github.com/adocshq/adocs/internal/sections"
)

// defaultPriorityBase leaves room for custom sections to slot in ahead of
// generated ones.
const defaultPriorityBase = 10

// Service is the end-to-end documentation generation pipeline: retrieve,
// augment, generate, inject, cache.
type Service struct {
	Embedder  embeddings.Embedder
	Executor  *generation.Executor
	Injector  *injection.Engine
	Snapshots *knowledge.Holder
	Repos     *config.RepoConfigStore
	Cache     *cache.Cache
	History   *history.Store

	TopK    int
	Timeout time.Duration
}

// Result is the final documentation structure plus request accounting.
type Result struct {
	RepoURL   string              `json:"repo_url"`
	Structure *sections.Structure `json:"structure"`
	Strategy  string              `json:"strategy,omitempty"`
	Exemplars []string            `json:"exemplars,omitempty"`
	CacheHit  bool                `json:"cache_hit"`
	Snapshot  string              `json:"snapshot_version,omitempty"`
}

// GenerateDocumentation runs the full pipeline for one repository.
// Configuration is validated before any provider call is made.
func (s *Service) GenerateDocumentation(ctx context.Context, meta *metadata.RepoMetadata) (*Result, error) {
	if meta == nil || meta.RepoURL == "" {
		return nil, fmt.Errorf("repository metadata with a github_url is required")
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	repoCfg, err := s.repoConfig(meta.RepoURL)
	if err != nil {
		return nil, err
	}
	if violations := config.ValidateRepositoryConfig(repoCfg); len(violations) > 0 {
		return nil, &config.ValidationError{RepoURL: meta.RepoURL, Violations: violations}
	}

	key := cacheKeyFor(meta.RepoURL, repoCfg)
	ttl := 0
	if repoCfg != nil {
		ttl = repoCfg.CacheTTLSeconds
	}

	started := time.Now()
	var run history.Run
	raw, hit, err := s.Cache.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (json.RawMessage, error) {
		res, cerr := s.compute(ctx, meta, repoCfg, &run)
		if cerr != nil {
			return nil, cerr
		}
		return json.Marshal(res)
	})
	if err != nil {
		s.record(meta, repoCfg, run, started, false, err)
		return nil, err
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding cached result: %w", err)
	}
	result.CacheHit = hit
	if hit {
		// compute never ran, so fill the history row from the cached result.
		run.SnapshotVersion = result.Snapshot
		run.Exemplars = result.Exemplars
		if result.Structure != nil {
			run.SectionCount = len(result.Structure.Sections)
			run.CustomCount = countCustom(result.Structure.Sections)
		}
	}
	s.record(meta, repoCfg, run, started, hit, nil)
	return &result, nil
}

// compute is the uncached pipeline body.
func (s *Service) compute(ctx context.Context, meta *metadata.RepoMetadata, repoCfg *config.RepositoryConfig, run *history.Run) (*Result, error) {
	snap := s.Snapshots.Load()

	var exemplars []knowledge.Scored
	if snap != nil && len(snap.Records) > 0 {
		query, err := embeddings.EmbedOne(ctx, s.Embedder, meta.CorpusText())
		if err != nil {
			return nil, err
		}
		exemplars = knowledge.Retrieve(query, snap, s.topK())
	} else {
		log.Printf("pipeline: no knowledge base loaded, generating for %s without exemplars", meta.RepoURL)
	}

	genRes, err := s.Executor.Generate(ctx, meta, exemplars)
	if err != nil {
		return nil, err
	}
	sections.AssignDefaultPriorities(genRes.Structure.Sections, defaultPriorityBase)

	final, err := s.Injector.Inject(ctx, genRes.Structure, repoCfg)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RepoURL:   meta.RepoURL,
		Structure: final,
	}
	if snap != nil {
		result.Snapshot = snap.Version
	}
	if repoCfg != nil {
		result.Strategy = string(repoCfg.InjectionStrategy)
	}
	for _, ex := range exemplars {
		result.Exemplars = append(result.Exemplars, ex.Record.RepoURL)
	}

	run.SnapshotVersion = result.Snapshot
	run.Exemplars = result.Exemplars
	run.SectionCount = len(final.Sections)
	run.CustomCount = countCustom(final.Sections)
	run.Repaired = genRes.Repaired
	run.InputTokens = genRes.InputTokens
	run.OutputTokens = genRes.OutputTokens
	return result, nil
}

func (s *Service) repoConfig(repoURL string) (*config.RepositoryConfig, error) {
	if s.Repos == nil {
		return nil, nil
	}
	cfg, err := s.Repos.Get(repoURL)
	if err != nil {
		return nil, &config.ValidationError{RepoURL: repoURL, Violations: []string{err.Error()}}
	}
	return cfg, nil
}

func (s *Service) topK() int {
	if s.TopK < 1 {
		return 3
	}
	return s.TopK
}

// record writes the run to history. History failures are logged, never
// surfaced; the generation result is already in hand.
func (s *Service) record(meta *metadata.RepoMetadata, repoCfg *config.RepositoryConfig, run history.Run, started time.Time, cacheHit bool, genErr error) {
	if s.History == nil {
		return
	}
	run.RepoURL = meta.RepoURL
	run.CacheHit = cacheHit
	run.DurationMS = time.Since(started).Milliseconds()
	if repoCfg != nil {
		run.Strategy = string(repoCfg.InjectionStrategy)
	}
	if genErr != nil {
		run.Error = genErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.History.Record(ctx, run); err != nil {
		log.Printf("pipeline: recording history for %s: %v", meta.RepoURL, err)
	}
}

// cacheKeyFor combines repository identity with the injection-relevant
// configuration fingerprint.
func cacheKeyFor(repoURL string, cfg *config.RepositoryConfig) string {
	return metadata.SanitizeRepoName(repoURL) + "_" + cfg.Fingerprint()
}

func countCustom(secs []sections.Section) int {
	n := 0
	for _, sec := range secs {
		if sec.IsCustom {
			n++
		}
	}
	return n
}

// IsConfigError reports whether err is a repository configuration error,
// so callers can map it to a 4xx rather than a 5xx.
func IsConfigError(err error) bool {
	var ve *config.ValidationError
	return errors.As(err, &ve)
}
