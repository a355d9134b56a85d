// Package embedding provides text embedding services used by the novelty
// filter and the knowledge store.
package embedding

import "context"

// Service generates fixed-length vector embeddings for text.
type Service interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
