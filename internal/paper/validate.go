package paper

import "fmt"

// Validation defaults.
const (
	DefaultMinQuestions = 10
	DefaultMaxQuestions = 50

	// marksTolerance is the fraction of the target by which the total may
	// deviate before the paper is invalid.
	marksTolerance = 0.1
)

// Stats summarizes the validated paper.
type Stats struct {
	TotalQuestions  int `json:"total_questions"`
	TotalMarks      int `json:"total_marks"`
	TargetMarks     int `json:"target_marks"`
	MarksDifference int `json:"marks_difference"`
}

// Report is the outcome of validating a paper against its targets. The
// paper itself is never mutated or auto-corrected.
type Report struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Stats    Stats    `json:"statistics"`
}

// ValidateOptions carries validation limits. Zero values take defaults.
type ValidateOptions struct {
	MinQuestions int
	MaxQuestions int
}

// Validate checks the question set against the target marks and question
// count limits, returning a structured report of errors and warnings.
func Validate(questions []Question, targetMarks int, opts ValidateOptions) Report {
	minQ := opts.MinQuestions
	if minQ == 0 {
		minQ = DefaultMinQuestions
	}
	maxQ := opts.MaxQuestions
	if maxQ == 0 {
		maxQ = DefaultMaxQuestions
	}

	totalMarks := 0
	for _, q := range questions {
		totalMarks += q.Marks
	}

	report := Report{
		Valid: true,
		Stats: Stats{
			TotalQuestions:  len(questions),
			TotalMarks:      totalMarks,
			TargetMarks:     targetMarks,
			MarksDifference: totalMarks - targetMarks,
		},
	}

	if len(questions) < minQ {
		report.Valid = false
		report.Errors = append(report.Errors,
			fmt.Sprintf("too few questions: %d (min: %d)", len(questions), minQ))
	} else if len(questions) > maxQ {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("many questions: %d (max: %d)", len(questions), maxQ))
	}

	diff := totalMarks - targetMarks
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > float64(targetMarks)*marksTolerance {
		report.Valid = false
		report.Errors = append(report.Errors,
			fmt.Sprintf("total marks mismatch: %d (target: %d)", totalMarks, targetMarks))
	} else if diff > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("slight marks difference: %d marks", diff))
	}

	for i, q := range questions {
		if q.Text == "" {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("question %d has no text", i+1))
		}
		if q.Marks == 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("question %d has no marks assigned", i+1))
		}
	}

	return report
}
