package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/paperforge/paperforge/internal/novelty"
)

// Memory is an in-process Knowledge implementation. It is the default when
// no database is configured, and the store used in tests.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

func (m *Memory) Add(_ context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *Memory) Query(_ context.Context, embedding []float32, filter map[string]string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []ScoredDocument
	for _, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}
		hits = append(hits, ScoredDocument{
			Document: doc,
			Score:    novelty.CosineSimilarity(embedding, doc.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *Memory) Get(_ context.Context, filter map[string]string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for _, doc := range m.docs {
		if matches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
