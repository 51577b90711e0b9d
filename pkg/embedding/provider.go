package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations return raw model output; Engine normalizes and validates it.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// GenerateBatch embeds texts in one request where the backend supports it.
	// The result has one vector per input, in input order.
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
}
