// Package store persists syllabus text and generated questions as
// embedded documents and retrieves them by vector similarity.
package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/paperforge/paperforge/internal/embedding"
	"github.com/paperforge/paperforge/internal/paper"
)

// Document is one stored text with its embedding vector.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// ScoredDocument is a query hit with its cosine similarity to the query.
type ScoredDocument struct {
	Document
	Score float64
}

// Knowledge is the vector store. Filter entries must all match a
// document's metadata for it to qualify; a nil filter matches everything.
type Knowledge interface {
	Add(ctx context.Context, doc Document) error
	Query(ctx context.Context, embedding []float32, filter map[string]string, k int) ([]ScoredDocument, error)
	Get(ctx context.Context, filter map[string]string) ([]Document, error)
}

// NewID returns a fresh document ID.
func NewID() string {
	return uuid.NewString()
}

// StoreSyllabus embeds and stores syllabus text under type=syllabus with
// the course name attached.
func StoreSyllabus(ctx context.Context, k Knowledge, embedder embedding.Service, courseName, text string) (string, error) {
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embedding syllabus: %w", err)
	}
	doc := Document{
		ID:        NewID(),
		Text:      text,
		Embedding: vec,
		Metadata: map[string]string{
			"type":   "syllabus",
			"course": courseName,
		},
	}
	if err := k.Add(ctx, doc); err != nil {
		return "", fmt.Errorf("storing syllabus: %w", err)
	}
	return doc.ID, nil
}

// StoreQuestions embeds and stores each question under type=question with
// marks, level and topic metadata. Returns the stored document IDs in
// input order.
func StoreQuestions(ctx context.Context, k Knowledge, embedder embedding.Service, setName string, questions []paper.Question) ([]string, error) {
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		vec, err := embedder.Embed(ctx, q.Text)
		if err != nil {
			return ids, fmt.Errorf("embedding question %d: %w", q.Number, err)
		}
		doc := Document{
			ID:        NewID(),
			Text:      q.Text,
			Embedding: vec,
			Metadata: map[string]string{
				"type":  "question",
				"set":   setName,
				"marks": strconv.Itoa(q.Marks),
				"level": q.Level.String(),
				"topic": q.Topic,
			},
		}
		if err := k.Add(ctx, doc); err != nil {
			return ids, fmt.Errorf("storing question %d: %w", q.Number, err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func matches(doc Document, filter map[string]string) bool {
	for key, want := range filter {
		if doc.Metadata[key] != want {
			return false
		}
	}
	return true
}
