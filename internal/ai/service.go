// Package ai provides the generation service used by the question
// pipeline: structuring, authoring, quality evaluation and refinement
// against an LLM provider, with retry and response validation.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paperforge/paperforge/internal/bloom"
)

// UnitNumber is a unit identifier. Models return these as either strings
// ("1", "Unit 2") or bare numbers, so both decode.
type UnitNumber string

func (n *UnitNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = UnitNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("unit_number must be string or number: %s", strings.TrimSpace(string(data)))
	}
	*n = UnitNumber(num.String())
	return nil
}

// CourseUnit is one unit of a structured syllabus.
type CourseUnit struct {
	Number    UnitNumber `json:"unit_number"`
	Name      string     `json:"unit_name"`
	Topics    []string   `json:"topics"`
	Weightage float64    `json:"weightage,omitempty"`
}

// CourseStructure is the structuring call's result.
type CourseStructure struct {
	CourseName string       `json:"course_name"`
	Units      []CourseUnit `json:"units"`
}

// DefaultCourseStructure is the fallback when structuring fails.
func DefaultCourseStructure() CourseStructure {
	return CourseStructure{CourseName: "Unknown"}
}

// AuthorRequest asks for a batch of questions at one Bloom level.
type AuthorRequest struct {
	Level            bloom.Level
	Count            int
	MarksPerQuestion int
	// TopicHints is a comma-joined list of high-priority topic names.
	TopicHints string
	// Context is the truncated syllabus text.
	Context string
}

// QuestionRecord is one raw question as returned by the service. Level may
// be empty when the model omits it; the orchestrator classifies it then.
type QuestionRecord struct {
	Text       string `json:"question"`
	Marks      int    `json:"marks"`
	Level      string `json:"bloom_level"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// Service is the external generation service. All four calls are fallible
// and wrapped by the retry policy at construction time.
type Service interface {
	// Structure parses raw syllabus text into a course/unit record.
	Structure(ctx context.Context, syllabusText string) (CourseStructure, error)

	// Author generates an ordered list of question records for one level.
	Author(ctx context.Context, req AuthorRequest) ([]QuestionRecord, error)

	// Evaluate scores a question 0-10 against the quality rubric.
	Evaluate(ctx context.Context, q QuestionRecord) (float64, error)

	// Refine returns an improved question text for the given feedback.
	Refine(ctx context.Context, questionText, feedback string) (string, error)
}

// ParseError marks a response that arrived but could not be interpreted as
// the expected record shape. Parse errors are permanent: retrying the call
// is the transport's job, falling back is the caller's.
type ParseError struct {
	Call string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s response not parseable: %v", e.Call, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
