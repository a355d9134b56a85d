// Package paper holds the question and paper models, groups questions into
// sections by marks band and validates assembled papers against targets.
package paper

import "github.com/paperforge/paperforge/internal/bloom"

// Difficulty of a question.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Question is a single examination question. Numbers are globally unique
// within a paper and assigned in the order levels were processed.
type Question struct {
	Number       int         `json:"number"`
	Text         string      `json:"question"`
	Marks        int         `json:"marks"`
	Level        bloom.Level `json:"bloom_level"`
	Topic        string      `json:"topic,omitempty"`
	Difficulty   Difficulty  `json:"difficulty"`
	QualityScore *float64    `json:"quality_score,omitempty"`
}

// Section is an ordered group of questions under one label.
type Section struct {
	Label     string     `json:"label"`
	Questions []Question `json:"questions"`
}

// Paper is an assembled examination paper. Read-only after assembly.
type Paper struct {
	SetName        string    `json:"set_name"`
	Sections       []Section `json:"sections"`
	TotalMarks     int       `json:"total_marks"`
	TotalQuestions int       `json:"total_questions"`
}

// Questions returns all questions across sections in section order.
func (p Paper) Questions() []Question {
	var qs []Question
	for _, s := range p.Sections {
		qs = append(qs, s.Questions...)
	}
	return qs
}
