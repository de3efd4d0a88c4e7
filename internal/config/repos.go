package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	yamlv3 "gopkg.in/yaml.v3"
)

// overridesFile is the on-disk shape of repository_config.yaml.
type overridesFile struct {
	Repositories map[string]repoEntry `yaml:"repositories"`
	Global       globalEntry          `yaml:"global_config"`
}

type repoEntry struct {
	CustomSections    []sectionEntry    `yaml:"custom_sections"`
	OverridePath      string            `yaml:"gcs_path_override"`
	CustomMetadata    map[string]any    `yaml:"custom_metadata"`
	InjectionStrategy InjectionStrategy `yaml:"injection_strategy"`
	Enabled           *bool             `yaml:"enabled"`
}

type sectionEntry struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"gcs_path"`
	Priority    *int   `yaml:"priority"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Enabled     *bool  `yaml:"enabled"`
}

type globalEntry struct {
	EnableCustomSections *bool             `yaml:"enable_custom_sections"`
	FallbackToGenerated  *bool             `yaml:"fallback_to_generated"`
	CacheTTLSeconds      *int              `yaml:"cache_ttl"`
	InjectionStrategy    InjectionStrategy `yaml:"injection_strategy"`
}

// RepoConfigStore reads per-repository overrides from a YAML file. The
// parsed file is cached and re-read only when its mtime changes, matching
// how operators edit it in place.
type RepoConfigStore struct {
	path string

	mu      sync.Mutex
	cached  *overridesFile
	lastMod time.Time
}

// NewRepoConfigStore creates a store for the given overrides file path.
// The file may not exist yet; Get then returns nil for every repository.
func NewRepoConfigStore(path string) *RepoConfigStore {
	return &RepoConfigStore{path: path}
}

func (s *RepoConfigStore) load() (*overridesFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return &overridesFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", s.path, err)
	}

	if s.cached != nil && !info.ModTime().After(s.lastMod) {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var parsed overridesFile
	if err := yamlv3.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	s.cached = &parsed
	s.lastMod = info.ModTime()
	return s.cached, nil
}

// Global returns the overrides file's global defaults.
func (s *RepoConfigStore) Global() (GlobalOverrides, error) {
	parsed, err := s.load()
	if err != nil {
		return GlobalOverrides{}, err
	}
	return resolveGlobals(parsed.Global), nil
}

// Get returns the effective configuration for a repository, or nil if no
// entry (exact or wildcard pattern) matches. Exact matches win over
// patterns; patterns use doublestar glob syntax against the full URL.
func (s *RepoConfigStore) Get(repoURL string) (*RepositoryConfig, error) {
	parsed, err := s.load()
	if err != nil {
		return nil, err
	}

	entry, ok := parsed.Repositories[repoURL]
	if !ok {
		// Deterministic pattern scan: sorted pattern order.
		patterns := make([]string, 0, len(parsed.Repositories))
		for p := range parsed.Repositories {
			patterns = append(patterns, p)
		}
		sort.Strings(patterns)
		for _, p := range patterns {
			if matched, _ := doublestar.Match(p, repoURL); matched {
				entry = parsed.Repositories[p]
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, nil
	}

	return resolveRepoConfig(repoURL, entry, resolveGlobals(parsed.Global)), nil
}

// Reload drops the cached file so the next read hits disk.
func (s *RepoConfigStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.lastMod = time.Time{}
}

func resolveGlobals(g globalEntry) GlobalOverrides {
	out := DefaultGlobalOverrides()
	if g.EnableCustomSections != nil {
		out.EnableCustomSections = *g.EnableCustomSections
	}
	if g.FallbackToGenerated != nil {
		out.FallbackToGenerated = *g.FallbackToGenerated
	}
	if g.CacheTTLSeconds != nil {
		out.CacheTTLSeconds = *g.CacheTTLSeconds
	}
	if g.InjectionStrategy != "" {
		out.InjectionStrategy = g.InjectionStrategy
	}
	return out
}

func resolveRepoConfig(repoURL string, entry repoEntry, globals GlobalOverrides) *RepositoryConfig {
	cfg := &RepositoryConfig{
		RepoURL:              repoURL,
		OverridePath:         entry.OverridePath,
		CustomMetadata:       entry.CustomMetadata,
		InjectionStrategy:    entry.InjectionStrategy,
		Enabled:              true,
		EnableCustomSections: globals.EnableCustomSections,
		FallbackToGenerated:  globals.FallbackToGenerated,
		CacheTTLSeconds:      globals.CacheTTLSeconds,
	}
	if entry.Enabled != nil {
		cfg.Enabled = *entry.Enabled
	}
	if cfg.InjectionStrategy == "" {
		cfg.InjectionStrategy = globals.InjectionStrategy
	}

	for _, se := range entry.CustomSections {
		spec := CustomSectionSpec{
			Name:        se.Name,
			Path:        se.Path,
			Priority:    1,
			Description: se.Description,
			Icon:        se.Icon,
			Enabled:     true,
		}
		if se.Priority != nil {
			spec.Priority = *se.Priority
		}
		if spec.Icon == "" {
			spec.Icon = DefaultSectionIcon
		}
		if se.Enabled != nil {
			spec.Enabled = *se.Enabled
		}
		cfg.CustomSections = append(cfg.CustomSections, spec)
	}

	// Stable priority order; ties keep file order.
	sort.SliceStable(cfg.CustomSections, func(i, j int) bool {
		return cfg.CustomSections[i].Priority < cfg.CustomSections[j].Priority
	})

	return cfg
}

// ValidateRepositoryConfig checks a repository configuration and returns
// the list of violations. Empty means valid.
func ValidateRepositoryConfig(cfg *RepositoryConfig) []string {
	if cfg == nil {
		return nil
	}
	var violations []string
	if !ValidStrategy(cfg.InjectionStrategy) {
		violations = append(violations, fmt.Sprintf("invalid injection_strategy %q", cfg.InjectionStrategy))
	}
	if cfg.CacheTTLSeconds < 0 {
		violations = append(violations, "cache_ttl must be non-negative")
	}
	seen := map[string]bool{}
	for i, sec := range cfg.CustomSections {
		if sec.Name == "" {
			violations = append(violations, fmt.Sprintf("custom section %d: missing name", i))
		}
		if sec.Path == "" {
			violations = append(violations, fmt.Sprintf("custom section %d (%s): missing gcs_path", i, sec.Name))
		}
		if sec.Name != "" && seen[sec.Name] {
			violations = append(violations, fmt.Sprintf("custom section %d: duplicate name %q", i, sec.Name))
		}
		seen[sec.Name] = true
	}
	return violations
}

// Fingerprint hashes the injection-relevant parts of the configuration.
// Together with the repository URL it forms the cache key, so any change
// to strategy or custom sections invalidates cached results.
func (c *RepositoryConfig) Fingerprint() string {
	h := sha256.New()
	if c == nil {
		h.Write([]byte("generated-only"))
		return hex.EncodeToString(h.Sum(nil))[:16]
	}

	relevant := struct {
		Strategy             InjectionStrategy   `json:"strategy"`
		Sections             []CustomSectionSpec `json:"sections"`
		EnableCustomSections bool                `json:"enable_custom_sections"`
		FallbackToGenerated  bool                `json:"fallback_to_generated"`
		Enabled              bool                `json:"enabled"`
	}{c.InjectionStrategy, c.CustomSections, c.EnableCustomSections, c.FallbackToGenerated, c.Enabled}

	data, _ := json.Marshal(relevant)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:16]
}
