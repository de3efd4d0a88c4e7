package embeddings

import (
	"context"
	"fmt"
)

// Embedder generates fixed-dimension embedding vectors for text. For a
// given model version the output is deterministic: identical text yields
// an identical vector.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimensionality of this model.
	Dimensions() int

	// Name returns the model identifier. A knowledge-base snapshot records
	// this name; snapshots built with different models must not be mixed.
	Name() string
}

// ProviderError indicates the embedding provider was unreachable or
// rejected the request. Callers treat it as fatal for the operation:
// there is no fallback embedding.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, &ProviderError{Model: e.Name(), Err: fmt.Errorf("expected 1 embedding, got %d", len(vecs))}
	}
	return vecs[0], nil
}
