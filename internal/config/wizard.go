package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .adocs.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to adocs! Let's configure your service.")
	fmt.Println()

	// 1. LLM provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"anthropic", "openai"},
	}
	_, provider, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: defaultModelFor(provider),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Embedding provider.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama"},
	}
	_, embedProvider, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}

	// 4. Data directory for snapshots, custom docs and cache.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: "data",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 5. Retrieval depth.
	topKPrompt := promptui.Prompt{
		Label:   "Exemplars retrieved per request (top_k)",
		Default: "3",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("top_k: %w", err)
	}
	topK, _ := strconv.Atoi(topKStr)

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	cfg.EmbeddingProvider = embedProvider
	cfg.DataDir = dataDir
	cfg.TopK = topK
	if embedProvider == "ollama" {
		cfg.EmbeddingModel = "nomic-embed-text"
	}

	envVar := apiKeyEnvVar(provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running adocs generate.\n", envVar)
	}

	configPath := ".adocs.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

func defaultModelFor(provider string) string {
	if provider == "openai" {
		return "gpt-4o"
	}
	return "claude-sonnet-4-5-20250929"
}

func apiKeyEnvVar(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	}
	return ""
}
