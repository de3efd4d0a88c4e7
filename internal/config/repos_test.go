package config

import (
	"os"
	"path/filepath"
	"testing"
)

const overridesYAML = `
repositories:
  "https://github.com/acme/payments":
    injection_strategy: merge
    custom_sections:
      - name: "Deployment Guide"
        gcs_path: "custom_docs/acme_payments/deployment.md"
        priority: 2
        description: "How to deploy"
      - name: "Runbook"
        gcs_path: "custom_docs/acme_payments/runbook.md"
        priority: 1
        icon: "🚨"
  "https://github.com/acme/*":
    injection_strategy: append
    custom_sections:
      - name: "Team Standards"
        gcs_path: "custom_docs/acme/standards.md"
  "https://github.com/legacy/old":
    enabled: false

global_config:
  enable_custom_sections: true
  fallback_to_generated: false
  cache_ttl: 600
  injection_strategy: prepend
`

func writeOverrides(t *testing.T, content string) *RepoConfigStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repository_config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewRepoConfigStore(path)
}

func TestGetExactMatch(t *testing.T) {
	store := writeOverrides(t, overridesYAML)

	cfg, err := store.Get("https://github.com/acme/payments")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if cfg.InjectionStrategy != StrategyMerge {
		t.Errorf("strategy = %q, want merge", cfg.InjectionStrategy)
	}
	if len(cfg.CustomSections) != 2 {
		t.Fatalf("sections = %d, want 2", len(cfg.CustomSections))
	}
	// Sections come back priority-sorted.
	if cfg.CustomSections[0].Name != "Runbook" {
		t.Errorf("first section = %q, want Runbook", cfg.CustomSections[0].Name)
	}
	if cfg.CustomSections[0].Icon != "🚨" {
		t.Errorf("icon = %q, want 🚨", cfg.CustomSections[0].Icon)
	}
	// Missing icon falls back to the default.
	if cfg.CustomSections[1].Icon != DefaultSectionIcon {
		t.Errorf("default icon = %q, want %q", cfg.CustomSections[1].Icon, DefaultSectionIcon)
	}
	// Globals are merged into the effective config.
	if cfg.CacheTTLSeconds != 600 {
		t.Errorf("cache TTL = %d, want 600 from globals", cfg.CacheTTLSeconds)
	}
	if cfg.FallbackToGenerated {
		t.Error("FallbackToGenerated = true, want false from globals")
	}
}

func TestGetWildcardMatch(t *testing.T) {
	store := writeOverrides(t, overridesYAML)

	cfg, err := store.Get("https://github.com/acme/billing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected wildcard match, got nil")
	}
	if cfg.InjectionStrategy != StrategyAppend {
		t.Errorf("strategy = %q, want append from pattern entry", cfg.InjectionStrategy)
	}
	if cfg.RepoURL != "https://github.com/acme/billing" {
		t.Errorf("RepoURL = %q, want the queried URL", cfg.RepoURL)
	}
}

func TestGetExactWinsOverWildcard(t *testing.T) {
	store := writeOverrides(t, overridesYAML)

	cfg, err := store.Get("https://github.com/acme/payments")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InjectionStrategy != StrategyMerge {
		t.Errorf("strategy = %q, exact entry should win over pattern", cfg.InjectionStrategy)
	}
}

func TestGetNoMatch(t *testing.T) {
	store := writeOverrides(t, overridesYAML)

	cfg, err := store.Get("https://github.com/other/repo")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Errorf("expected nil for unmatched repo, got %+v", cfg)
	}
}

func TestGetDisabledRepo(t *testing.T) {
	store := writeOverrides(t, overridesYAML)

	cfg, err := store.Get("https://github.com/legacy/old")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected config for disabled repo")
	}
	if cfg.Enabled {
		t.Error("Enabled = true, want false")
	}
}

func TestMissingFileReturnsNoConfigs(t *testing.T) {
	store := NewRepoConfigStore(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := store.Get("https://github.com/any/repo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil, got %+v", cfg)
	}
	g, err := store.Global()
	if err != nil {
		t.Fatal(err)
	}
	if g.CacheTTLSeconds != 3600 || !g.EnableCustomSections {
		t.Errorf("globals = %+v, want built-in defaults", g)
	}
}

func TestEmptyStrategyFallsBackToGlobal(t *testing.T) {
	store := writeOverrides(t, `
repositories:
  "https://github.com/acme/plain":
    custom_sections:
      - name: "Notes"
        gcs_path: "custom_docs/acme_plain/notes.md"
global_config:
  injection_strategy: replace
`)
	cfg, err := store.Get("https://github.com/acme/plain")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InjectionStrategy != StrategyReplace {
		t.Errorf("strategy = %q, want replace from globals", cfg.InjectionStrategy)
	}
	// Unset priority defaults to 1, unset enabled to true.
	if cfg.CustomSections[0].Priority != 1 {
		t.Errorf("priority = %d, want 1", cfg.CustomSections[0].Priority)
	}
	if !cfg.CustomSections[0].Enabled {
		t.Error("Enabled = false, want default true")
	}
}

func TestValidateRepositoryConfig(t *testing.T) {
	valid := &RepositoryConfig{
		RepoURL:           "https://github.com/a/b",
		InjectionStrategy: StrategyPrepend,
		CustomSections: []CustomSectionSpec{
			{Name: "A", Path: "custom_docs/a_b/a.md"},
		},
	}
	if v := ValidateRepositoryConfig(valid); len(v) != 0 {
		t.Errorf("valid config got violations: %v", v)
	}

	bad := &RepositoryConfig{
		RepoURL:           "https://github.com/a/b",
		InjectionStrategy: "sideways",
		CacheTTLSeconds:   -1,
		CustomSections: []CustomSectionSpec{
			{Name: "", Path: ""},
			{Name: "Dup", Path: "x.md"},
			{Name: "Dup", Path: "y.md"},
		},
	}
	v := ValidateRepositoryConfig(bad)
	if len(v) < 4 {
		t.Errorf("want at least 4 violations (strategy, ttl, missing name, missing path, duplicate), got %d: %v", len(v), v)
	}
}

func TestFingerprint(t *testing.T) {
	a := &RepositoryConfig{InjectionStrategy: StrategyPrepend, Enabled: true}
	b := &RepositoryConfig{InjectionStrategy: StrategyAppend, Enabled: true}

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different strategies should fingerprint differently")
	}
	if a.Fingerprint() != a.Fingerprint() {
		t.Error("fingerprint should be deterministic")
	}

	var nilCfg *RepositoryConfig
	if nilCfg.Fingerprint() == "" {
		t.Error("nil config should still fingerprint")
	}
	// OverridePath is not injection-relevant.
	c := &RepositoryConfig{InjectionStrategy: StrategyPrepend, Enabled: true, OverridePath: "elsewhere"}
	if a.Fingerprint() != c.Fingerprint() {
		t.Error("gcs_path_override should not change the fingerprint")
	}
}

func TestReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repository_config.yaml")
	first := "repositories:\n  \"https://github.com/a/b\":\n    injection_strategy: prepend\n"
	if err := os.WriteFile(path, []byte(first), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewRepoConfigStore(path)

	cfg, err := store.Get("https://github.com/a/b")
	if err != nil || cfg == nil {
		t.Fatalf("Get: cfg=%v err=%v", cfg, err)
	}
	if cfg.InjectionStrategy != StrategyPrepend {
		t.Fatalf("strategy = %q", cfg.InjectionStrategy)
	}

	second := "repositories:\n  \"https://github.com/a/b\":\n    injection_strategy: append\n"
	if err := os.WriteFile(path, []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}
	store.Reload()

	cfg, err = store.Get("https://github.com/a/b")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InjectionStrategy != StrategyAppend {
		t.Errorf("strategy after reload = %q, want append", cfg.InjectionStrategy)
	}
}
