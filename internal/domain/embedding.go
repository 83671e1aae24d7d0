package domain

import "context"

// KeyPrefix namespaces every Redis key the service writes.
const KeyPrefix = "propsearch:"

// EmbeddingResult is a query vector plus the tokens spent producing it.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
}

// Embedder vectorizes text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}
