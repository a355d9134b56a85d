package patterns_test

import (
	"strings"
	"testing"

	"github.com/paperforge/paperforge/internal/pastpapers"
	"github.com/paperforge/paperforge/internal/patterns"
)

const sampleSyllabus = `Unit 1: Mechanics
1. Kinematics
2. Dynamics
• Work and energy
Thermal Physics:
plain descriptive line
`

func TestAnalyze_Structure(t *testing.T) {
	a := patterns.NewAnalyzer()
	analysis := a.Analyze(sampleSyllabus, nil)

	s := analysis.Structure
	if s.NumberedItems != 2 {
		t.Errorf("NumberedItems = %d, want 2", s.NumberedItems)
	}
	if s.BulletedItems != 1 {
		t.Errorf("BulletedItems = %d, want 1", s.BulletedItems)
	}
	if s.UnitsModules != 1 {
		t.Errorf("UnitsModules = %d, want 1", s.UnitsModules)
	}
	if s.NonEmptyLines != 6 {
		t.Errorf("NonEmptyLines = %d, want 6", s.NonEmptyLines)
	}
}

func TestAnalyze_Topics(t *testing.T) {
	a := patterns.NewAnalyzer()
	analysis := a.Analyze(sampleSyllabus, nil)

	// Unit header, two numbered items and the colon-terminated line.
	if analysis.Topics.Count != 4 {
		t.Fatalf("Topics.Count = %d, want 4 (got %v)", analysis.Topics.Count, analysis.Topics.Topics)
	}
	if analysis.Topics.AvgWordsPerTopic <= 0 {
		t.Error("AvgWordsPerTopic should be positive")
	}
}

func pastPaperFixtures() []pastpapers.Paper {
	return []pastpapers.Paper{
		{
			Name: "2022",
			Questions: []pastpapers.Question{
				{Text: "Define inertia.", Marks: 2, Level: "remember", Topic: "Mechanics"},
				{Text: "Explain Newton's second law.", Marks: 5, Level: "understand", Topic: "Mechanics"},
				{Text: "Derive the work-energy theorem.", Marks: 12, Level: "analyze", Topic: "Energy"},
			},
		},
		{
			Name: "2023",
			Questions: []pastpapers.Question{
				{Text: "What is momentum?", Marks: 2, Level: "remember", Topic: "Mechanics"},
			},
		},
	}
}

func TestAnalyze_Historical(t *testing.T) {
	a := patterns.NewAnalyzer()
	analysis := a.Analyze(sampleSyllabus, pastPaperFixtures())

	h := analysis.Historical
	if h == nil {
		t.Fatal("Historical is nil")
	}
	if h.PaperCount != 2 {
		t.Errorf("PaperCount = %d, want 2", h.PaperCount)
	}
	if h.AvgQuestionsPerPaper != 2 {
		t.Errorf("AvgQuestionsPerPaper = %f, want 2", h.AvgQuestionsPerPaper)
	}
	if h.MinQuestions != 1 || h.MaxQuestions != 3 {
		t.Errorf("question range = %d..%d, want 1..3", h.MinQuestions, h.MaxQuestions)
	}
	// Paper totals are 19 and 2 marks.
	if h.Marks.Min != 2 || h.Marks.Max != 19 {
		t.Errorf("marks range = %d..%d, want 2..19", h.Marks.Min, h.Marks.Max)
	}
	if h.Marks.Avg != 10.5 {
		t.Errorf("Marks.Avg = %f, want 10.5", h.Marks.Avg)
	}
	if h.Marks.Total != 21 {
		t.Errorf("Marks.Total = %d, want 21", h.Marks.Total)
	}
	// remember appears twice out of four classified questions.
	if got := h.BloomPercentages["remember"]; got != 50 {
		t.Errorf("remember percentage = %f, want 50", got)
	}
}

func TestAnalyze_TopicFrequencies(t *testing.T) {
	a := patterns.NewAnalyzer()
	analysis := a.Analyze(sampleSyllabus, pastPaperFixtures())

	if len(analysis.TopicFrequencies) != 2 {
		t.Fatalf("TopicFrequencies = %v, want 2 entries", analysis.TopicFrequencies)
	}
	top := analysis.TopicFrequencies[0]
	if top.Topic != "Mechanics" || top.Frequency != 1.0 {
		t.Errorf("top frequency = %+v, want Mechanics/1.0", top)
	}
	if analysis.TopicFrequencies[1].Frequency != 0.5 {
		t.Errorf("Energy frequency = %f, want 0.5", analysis.TopicFrequencies[1].Frequency)
	}

	m := patterns.FrequencyMap(analysis.TopicFrequencies)
	if m["Mechanics"] != 1.0 || m["Energy"] != 0.5 {
		t.Errorf("FrequencyMap = %v", m)
	}
}

func TestAnalyze_QuestionTypes(t *testing.T) {
	a := patterns.NewAnalyzer()
	analysis := a.Analyze(sampleSyllabus, pastPaperFixtures())

	if got := analysis.QuestionTypes["Very Short Answer (Definition)"]; got != 2 {
		t.Errorf("Very Short Answer (Definition) = %d, want 2", got)
	}
	if got := analysis.QuestionTypes["Short Answer (Explanation)"]; got != 1 {
		t.Errorf("Short Answer (Explanation) = %d, want 1", got)
	}
	if got := analysis.QuestionTypes["Long Answer (Derivation/Proof)"]; got != 1 {
		t.Errorf("Long Answer (Derivation/Proof) = %d, want 1", got)
	}
}

func TestRecommendations(t *testing.T) {
	a := patterns.NewAnalyzer()

	recs := a.Recommendations()
	if len(recs) != 1 || !strings.Contains(recs[0], "No patterns analyzed") {
		t.Errorf("Recommendations before Analyze = %v", recs)
	}

	a.Analyze(sampleSyllabus, pastPaperFixtures())
	recs = a.Recommendations()

	assertContains := func(substr string) {
		t.Helper()
		for _, r := range recs {
			if strings.Contains(r, substr) {
				return
			}
		}
		t.Errorf("recommendations %v missing %q", recs, substr)
	}
	// 4 topics < 5 triggers the low-topic rule; Mechanics appears in every paper.
	assertContains("Low number of topics")
	assertContains("Historical average: 2 questions")
	assertContains("Mechanics")
}
