package embedding

import (
	"context"
	"crypto/sha256"
	"sync"
)

// Fake is a deterministic embedding service for tests. Identical texts
// always embed to identical vectors; Canned entries override the derived
// vector so tests can force specific similarities.
type Fake struct {
	mu     sync.Mutex
	Canned map[string][]float32
	Err    error
	Calls  []string
}

// NewFake creates a Fake with no canned vectors.
func NewFake() *Fake {
	return &Fake{Canned: make(map[string][]float32)}
}

func (f *Fake) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, text)
	if f.Err != nil {
		return nil, f.Err
	}
	if vec, ok := f.Canned[text]; ok {
		return vec, nil
	}
	return deriveVector(text), nil
}

func (f *Fake) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// deriveVector hashes the text into a 32-dimensional signed vector.
// Distinct texts come out near-orthogonal, so derived vectors never trip
// a novelty threshold; tests that need specific similarities use Canned.
func deriveVector(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, len(sum))
	for i, b := range sum {
		vec[i] = (float32(b) - 127.5) / 128.0
	}
	return vec
}
