package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/paperforge/paperforge/internal/ai"
	"github.com/paperforge/paperforge/internal/bloom"
	"github.com/paperforge/paperforge/internal/paper"
	"github.com/paperforge/paperforge/internal/syllabus"
)

const (
	// defaultContextLimit is how much syllabus text accompanies each
	// authoring call.
	defaultContextLimit = 1000
	// defaultTopicHints is how many top-priority topics are named in the
	// authoring prompt.
	defaultTopicHints = 5
	// defaultQualityScore stands in when quality evaluation fails.
	defaultQualityScore = 7.0
)

// Orchestrator drives the generation service through structuring,
// authoring, evaluation and refinement. Service errors never surface to
// the caller: every stage has a deterministic fallback.
type Orchestrator struct {
	Service    ai.Service
	Classifier *bloom.Classifier
	MarksTable map[bloom.Level]int
	// ContextLimit truncates the syllabus text sent with authoring calls.
	ContextLimit int
	// TopicHints caps how many topic names each authoring call mentions.
	TopicHints int
}

// NewOrchestrator creates an orchestrator with the default limits and
// marks table.
func NewOrchestrator(svc ai.Service) *Orchestrator {
	return &Orchestrator{
		Service:      svc,
		Classifier:   bloom.NewClassifier(),
		MarksTable:   DefaultMarksTable(),
		ContextLimit: defaultContextLimit,
		TopicHints:   defaultTopicHints,
	}
}

// Structure parses the syllabus into a course record. Failures degrade to
// an unknown course rather than an error so generation always proceeds.
func (o *Orchestrator) Structure(ctx context.Context, syllabusText string) ai.CourseStructure {
	structure, err := o.Service.Structure(ctx, syllabusText)
	if err != nil {
		slog.Warn("syllabus structuring failed, using default", "error", err)
		return ai.DefaultCourseStructure()
	}
	return structure
}

// GenerateInput is everything one question set needs.
type GenerateInput struct {
	Syllabus     string
	Topics       []syllabus.Topic
	Distribution bloom.Distribution
	TotalMarks   int
}

// Generate produces a full question set, level by level in canonical
// order. Question numbers are globally sequential across levels. Authoring
// failures for a level yield placeholder questions so the paper shape is
// preserved.
func (o *Orchestrator) Generate(ctx context.Context, in GenerateInput) []paper.Question {
	plan := o.plan(in)
	hints := o.topicHints(in.Topics)
	excerpt := o.truncate(in.Syllabus)

	var questions []paper.Question
	number := 1
	for _, level := range bloom.Levels() {
		entry, ok := plan[level]
		if !ok {
			continue
		}
		produced := o.generateLevel(ctx, level, entry, hints, excerpt, number)
		questions = append(questions, produced...)
		number += len(produced)
	}
	return questions
}

// GenerateConcurrent runs the per-level authoring calls in parallel and
// renumbers the merged result in canonical level order, so its output
// numbering is identical to Generate's when the service returns the same
// batches.
func (o *Orchestrator) GenerateConcurrent(ctx context.Context, in GenerateInput) []paper.Question {
	plan := o.plan(in)
	hints := o.topicHints(in.Topics)
	excerpt := o.truncate(in.Syllabus)

	levels := bloom.Levels()
	batches := make([][]paper.Question, len(levels))

	var wg sync.WaitGroup
	for i, level := range levels {
		entry, ok := plan[level]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(i int, level bloom.Level, entry PlanEntry) {
			defer wg.Done()
			// Numbering is provisional here; the merge below renumbers.
			batches[i] = o.generateLevel(ctx, level, entry, hints, excerpt, 1)
		}(i, level, entry)
	}
	wg.Wait()

	var questions []paper.Question
	number := 1
	for _, batch := range batches {
		for _, q := range batch {
			q.Number = number
			questions = append(questions, q)
			number++
		}
	}
	return questions
}

func (o *Orchestrator) plan(in GenerateInput) map[bloom.Level]PlanEntry {
	dist := in.Distribution
	if len(dist) == 0 {
		dist = DefaultDistribution()
	}
	return BuildPlan(dist, in.TotalMarks, o.MarksTable)
}

func (o *Orchestrator) topicHints(topics []syllabus.Topic) string {
	n := o.TopicHints
	if n <= 0 {
		n = defaultTopicHints
	}
	ranked := make([]syllabus.Topic, len(topics))
	copy(ranked, topics)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	names := make([]string, 0, n)
	for _, t := range syllabus.TopTopics(ranked, n) {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func (o *Orchestrator) truncate(text string) string {
	limit := o.ContextLimit
	if limit <= 0 {
		limit = defaultContextLimit
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}

func (o *Orchestrator) generateLevel(ctx context.Context, level bloom.Level, entry PlanEntry, hints, excerpt string, startNumber int) []paper.Question {
	records, err := o.Service.Author(ctx, ai.AuthorRequest{
		Level:            level,
		Count:            entry.Count,
		MarksPerQuestion: entry.MarksPerQuestion,
		TopicHints:       hints,
		Context:          excerpt,
	})
	if err != nil {
		slog.Warn("question authoring failed, using placeholders",
			"level", level, "count", entry.Count, "error", err)
		return o.placeholders(level, entry, startNumber)
	}

	questions := make([]paper.Question, 0, len(records))
	for i, rec := range records {
		questions = append(questions, o.toQuestion(rec, level, entry, startNumber+i))
	}
	return questions
}

// toQuestion normalizes a raw record: missing marks take the plan's
// per-question marks, unparseable level tags are classified from the text,
// unknown difficulties become medium.
func (o *Orchestrator) toQuestion(rec ai.QuestionRecord, planned bloom.Level, entry PlanEntry, number int) paper.Question {
	marks := rec.Marks
	if marks <= 0 {
		marks = entry.MarksPerQuestion
	}

	level, err := bloom.ParseLevel(rec.Level)
	if err != nil {
		if o.Classifier != nil {
			level = o.Classifier.Classify(rec.Text)
		} else {
			level = planned
		}
	}

	var difficulty paper.Difficulty
	switch strings.ToLower(strings.TrimSpace(rec.Difficulty)) {
	case "easy":
		difficulty = paper.Easy
	case "hard":
		difficulty = paper.Hard
	default:
		difficulty = paper.Medium
	}

	return paper.Question{
		Number:     number,
		Text:       rec.Text,
		Marks:      marks,
		Level:      level,
		Topic:      rec.Topic,
		Difficulty: difficulty,
	}
}

func (o *Orchestrator) placeholders(level bloom.Level, entry PlanEntry, startNumber int) []paper.Question {
	questions := make([]paper.Question, entry.Count)
	for i := range questions {
		questions[i] = paper.Question{
			Number:     startNumber + i,
			Text:       fmt.Sprintf("[Placeholder %s question %d]", level, i+1),
			Marks:      entry.MarksPerQuestion,
			Level:      level,
			Topic:      "General",
			Difficulty: paper.Medium,
		}
	}
	return questions
}

// EvaluateQuality scores a question 0-10. Any failure falls back to the
// default score.
func (o *Orchestrator) EvaluateQuality(ctx context.Context, q paper.Question) float64 {
	score, err := o.Service.Evaluate(ctx, ai.QuestionRecord{
		Text:  q.Text,
		Marks: q.Marks,
		Level: q.Level.String(),
		Topic: q.Topic,
	})
	if err != nil {
		slog.Warn("quality evaluation failed, using default score", "number", q.Number, "error", err)
		return defaultQualityScore
	}
	return score
}

// Refine rewrites the question text per the feedback. Number, marks, level
// and topic are preserved; failure returns the question unchanged.
func (o *Orchestrator) Refine(ctx context.Context, q paper.Question, feedback string) paper.Question {
	improved, err := o.Service.Refine(ctx, q.Text, feedback)
	if err != nil {
		slog.Warn("question refinement failed, keeping original", "number", q.Number, "error", err)
		return q
	}
	q.Text = improved
	return q
}
