package config

import "strings"

// InjectionStrategy is the rule for combining custom sections with a
// generated documentation structure.
type InjectionStrategy string

const (
	StrategyPrepend InjectionStrategy = "prepend"
	StrategyAppend  InjectionStrategy = "append"
	StrategyReplace InjectionStrategy = "replace"
	StrategyMerge   InjectionStrategy = "merge"
)

// ValidStrategy reports whether s is one of the four known strategies.
func ValidStrategy(s InjectionStrategy) bool {
	switch s {
	case StrategyPrepend, StrategyAppend, StrategyReplace, StrategyMerge:
		return true
	}
	return false
}

// Config is the top-level service configuration, corresponding to .adocs.yml.
type Config struct {
	Provider          string `yaml:"provider" koanf:"provider"`
	Model             string `yaml:"model" koanf:"model"`
	EmbeddingProvider string `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model" koanf:"embedding_model"`

	// DataDir is the content-store root: snapshots, cache entries and
	// custom section docs all live under it.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// RepoConfigPath points at the per-repository overrides YAML.
	RepoConfigPath string `yaml:"repo_config" koanf:"repo_config"`

	Port                int     `yaml:"port" koanf:"port"`
	TopK                int     `yaml:"top_k" koanf:"top_k"`
	MaxRetries          int     `yaml:"max_retries" koanf:"max_retries"`
	RequestTimeoutSecs  int     `yaml:"request_timeout_seconds" koanf:"request_timeout_seconds"`
	RateLimitRPM        int     `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Temperature         float64 `yaml:"temperature" koanf:"temperature"`
	HistoryDBPath       string  `yaml:"history_db" koanf:"history_db"`
}

// CustomSectionSpec describes one operator-authored section to inject.
type CustomSectionSpec struct {
	Name        string `yaml:"name" json:"name"`
	Path        string `yaml:"gcs_path" json:"gcs_path"`
	Priority    int    `yaml:"priority" json:"priority"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Enabled     bool   `yaml:"-" json:"enabled"`
}

// RepositoryConfig is the effective per-repository override set, after
// merging repository-level settings with the overrides file's globals.
type RepositoryConfig struct {
	RepoURL              string              `json:"repo_url"`
	CustomSections       []CustomSectionSpec `json:"custom_sections"`
	OverridePath         string              `json:"gcs_path_override,omitempty"`
	CustomMetadata       map[string]any      `json:"custom_metadata,omitempty"`
	InjectionStrategy    InjectionStrategy   `json:"injection_strategy"`
	Enabled              bool                `json:"enabled"`
	EnableCustomSections bool                `json:"enable_custom_sections"`
	FallbackToGenerated  bool                `json:"fallback_to_generated"`
	CacheTTLSeconds      int                 `json:"cache_ttl"`
}

// GlobalOverrides are the overrides file's defaults, applied when a
// repository entry doesn't set its own value.
type GlobalOverrides struct {
	EnableCustomSections bool              `yaml:"enable_custom_sections"`
	FallbackToGenerated  bool              `yaml:"fallback_to_generated"`
	CacheTTLSeconds      int               `yaml:"cache_ttl"`
	InjectionStrategy    InjectionStrategy `yaml:"injection_strategy"`
}

// ValidationError carries the violation list from validating a
// RepositoryConfig. It is surfaced before any embedding or LLM call.
type ValidationError struct {
	RepoURL    string
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid repository config for " + e.RepoURL + ": " + strings.Join(e.Violations, "; ")
}
