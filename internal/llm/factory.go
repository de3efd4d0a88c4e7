package llm

import (
	"fmt"
	"os"
)

// NewClient creates an LLM client for the given provider name and model.
// Supported providers: "anthropic", "openai".
func NewClient(provider, model string) (Client, error) {
	switch provider {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicClient(apiKey, model), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIClient(apiKey, model), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
