package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if g := DefaultGlobalOverrides(); g.CacheTTLSeconds != 3600 {
		t.Errorf("default cache TTL = %d, want 3600", g.CacheTTLSeconds)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".adocs.yml")
	content := "provider: openai\nmodel: gpt-4o\ntop_k: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	// Unset fields keep their defaults.
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want default 3", cfg.MaxRetries)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ADOCS_PROVIDER", "openai")
	t.Setenv("ADOCS_TOP_K", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want env override openai", cfg.Provider)
	}
	if cfg.TopK != 7 {
		t.Errorf("TopK = %d, want env override 7", cfg.TopK)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".adocs.yml")

	cfg := DefaultConfig()
	cfg.Provider = "openai"
	cfg.Model = "gpt-4o"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Provider != "openai" || loaded.Model != "gpt-4o" {
		t.Errorf("round trip: got %q/%q", loaded.Provider, loaded.Model)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad provider", func(c *Config) { c.Provider = "cohere" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"bad embedding provider", func(c *Config) { c.EmbeddingProvider = "mystery" }, true},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, true},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSecs = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
