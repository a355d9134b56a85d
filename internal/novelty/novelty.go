// Package novelty removes near-duplicate questions by comparing embedding
// vectors against a session-scoped history.
package novelty

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/paperforge/paperforge/internal/embedding"
	"github.com/paperforge/paperforge/internal/paper"
	"github.com/paperforge/paperforge/internal/pastpapers"
)

// DefaultThreshold is the cosine similarity above which two questions are
// considered duplicates.
const DefaultThreshold = 0.85

// State accumulates accepted question texts and their embeddings. It is
// session-scoped and owned by exactly one logical writer; callers running
// paper sets concurrently must give each set its own State.
type State struct {
	texts      []string
	embeddings [][]float32
}

// NewState creates an empty accumulator.
func NewState() *State {
	return &State{}
}

// Len reports how many questions have been accepted into the state.
func (s *State) Len() int {
	return len(s.texts)
}

// Texts returns the accepted question texts in acceptance order.
func (s *State) Texts() []string {
	return s.texts
}

// Filter checks candidate questions for novelty against a State.
type Filter struct {
	Embedder  embedding.Service
	Threshold float64
}

// NewFilter creates a filter with the default threshold.
func NewFilter(embedder embedding.Service) *Filter {
	return &Filter{Embedder: embedder, Threshold: DefaultThreshold}
}

// Add embeds text and appends it to the state.
func (f *Filter) Add(ctx context.Context, state *State, text string) error {
	if f.Embedder == nil {
		return nil
	}
	vec, err := f.Embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding question: %w", err)
	}
	state.texts = append(state.texts, text)
	state.embeddings = append(state.embeddings, vec)
	return nil
}

// IsNovel reports whether text is below the similarity threshold against
// every question already in the state. An empty state is always novel.
// threshold <= 0 uses the filter default.
func (f *Filter) IsNovel(ctx context.Context, state *State, text string, threshold float64) (bool, error) {
	if f.Embedder == nil || state.Len() == 0 {
		return true, nil
	}
	if threshold <= 0 {
		threshold = f.Threshold
	}

	vec, err := f.Embedder.Embed(ctx, text)
	if err != nil {
		return true, fmt.Errorf("embedding question: %w", err)
	}
	for _, existing := range state.embeddings {
		if CosineSimilarity(vec, existing) >= threshold {
			return false, nil
		}
	}
	return true, nil
}

// Result is the outcome of filtering a candidate batch.
type Result struct {
	Accepted []paper.Question
	Dropped  int
	// Degraded is set when the embedder was unavailable and candidates
	// passed through unchecked.
	Degraded bool
	Warnings []string
}

// FilterQuestions iterates candidates in input order. Each candidate with
// non-empty text that is novel against the current state is accepted and
// immediately added to the state, so input order decides which of two
// near-duplicates survives. Empty-text questions are dropped
// unconditionally. Embedder failures degrade to accepting the candidate.
func (f *Filter) FilterQuestions(ctx context.Context, state *State, candidates []paper.Question) Result {
	var res Result
	if f.Embedder == nil {
		res.Degraded = true
		res.Warnings = append(res.Warnings, "embedding service unavailable; novelty filtering skipped")
	}

	for _, q := range candidates {
		if q.Text == "" {
			res.Dropped++
			continue
		}
		novel, err := f.IsNovel(ctx, state, q.Text, 0)
		if err != nil {
			slog.Warn("novelty check degraded, accepting question", "number", q.Number, "error", err)
			res.Degraded = true
			res.Warnings = append(res.Warnings, fmt.Sprintf("question %d accepted unchecked: %v", q.Number, err))
			res.Accepted = append(res.Accepted, q)
			continue
		}
		if !novel {
			res.Dropped++
			continue
		}
		if err := f.Add(ctx, state, q.Text); err != nil {
			slog.Warn("recording accepted question failed", "number", q.Number, "error", err)
			res.Degraded = true
			res.Warnings = append(res.Warnings, fmt.Sprintf("question %d not recorded in history: %v", q.Number, err))
		}
		res.Accepted = append(res.Accepted, q)
	}
	return res
}

// FilterWithPastPapers seeds the state with every question text from the
// past papers, then filters the candidates, so new questions are
// deduplicated against history as well as against each other.
func (f *Filter) FilterWithPastPapers(ctx context.Context, state *State, candidates []paper.Question, past []pastpapers.Paper) Result {
	for _, text := range pastpapers.QuestionTexts(past) {
		if err := f.Add(ctx, state, text); err != nil {
			slog.Warn("seeding past paper question failed", "error", err)
		}
	}
	return f.FilterQuestions(ctx, state, candidates)
}

// DiversityScore is 1 minus the mean pairwise cosine similarity across all
// unordered pairs, clamped to [0,1]. Fewer than two questions, or no
// embedder, scores 1.0.
func (f *Filter) DiversityScore(ctx context.Context, questions []paper.Question) (float64, error) {
	if f.Embedder == nil || len(questions) < 2 {
		return 1.0, nil
	}

	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Text
	}
	vecs, err := f.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 1.0, fmt.Errorf("embedding questions: %w", err)
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			sum += CosineSimilarity(vecs[i], vecs[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 1.0, nil
	}
	diversity := 1.0 - sum/float64(pairs)
	return clamp01(diversity), nil
}

// CosineSimilarity is dot(a,b)/(|a||b|) clamped to [0,1]. Zero-norm
// vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
