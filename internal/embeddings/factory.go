package embeddings

import (
	"fmt"
	"os"
)

// NewEmbedder creates an Embedder for the given provider name and model.
// Supported providers: "openai", "ollama".
func NewEmbedder(provider, model string) (Embedder, error) {
	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model)), nil

	case "ollama":
		return NewOllamaEmbedder(model, 768, os.Getenv("OLLAMA_HOST")), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
