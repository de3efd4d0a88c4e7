package config

// DefaultConfig returns a Config with workable defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:           "anthropic",
		Model:              "claude-sonnet-4-5-20250929",
		EmbeddingProvider:  "openai",
		EmbeddingModel:     "text-embedding-3-small",
		DataDir:            "data",
		RepoConfigPath:     "repository_config.yaml",
		Port:               8080,
		TopK:               3,
		MaxRetries:         3,
		RequestTimeoutSecs: 120,
		RateLimitRPM:       60,
		Temperature:        0.1,
		HistoryDBPath:      "data/history.db",
	}
}

// DefaultGlobalOverrides mirrors the overrides file's built-in defaults
// when the file is missing or a field is unset.
func DefaultGlobalOverrides() GlobalOverrides {
	return GlobalOverrides{
		EnableCustomSections: true,
		FallbackToGenerated:  true,
		CacheTTLSeconds:      3600,
		InjectionStrategy:    StrategyPrepend,
	}
}

// DefaultSectionIcon is assigned to custom sections that don't set one.
const DefaultSectionIcon = "📄"
