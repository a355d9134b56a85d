package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/paperforge/paperforge/internal/bloom"
)

// Profile is the tunable generation profile. Every field has a working
// default, so a missing or partial profile file is fine.
type Profile struct {
	// Distribution maps Bloom levels to target percentages.
	Distribution bloom.Distribution `yaml:"bloom_distribution"`
	// MarksTable maps Bloom levels to marks per question.
	MarksTable map[bloom.Level]int `yaml:"marks_per_question"`
	// SimilarityThreshold is the novelty cutoff in (0, 1].
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// SyllabusWeight and FrequencyWeight are the priority blend.
	SyllabusWeight  float64 `yaml:"syllabus_weight"`
	FrequencyWeight float64 `yaml:"frequency_weight"`
	MinQuestions    int     `yaml:"min_questions"`
	MaxQuestions    int     `yaml:"max_questions"`
	TotalMarks      int     `yaml:"total_marks"`
}

// DefaultProfile returns the balanced generation profile.
func DefaultProfile() Profile {
	return Profile{
		Distribution: bloom.Distribution{
			bloom.Remember:   20,
			bloom.Understand: 20,
			bloom.Apply:      20,
			bloom.Analyze:    20,
			bloom.Evaluate:   10,
			bloom.Create:     10,
		},
		MarksTable: map[bloom.Level]int{
			bloom.Remember:   2,
			bloom.Understand: 3,
			bloom.Apply:      5,
			bloom.Analyze:    8,
			bloom.Evaluate:   10,
			bloom.Create:     15,
		},
		SimilarityThreshold: 0.85,
		SyllabusWeight:      0.6,
		FrequencyWeight:     0.4,
		MinQuestions:        10,
		MaxQuestions:        50,
		TotalMarks:          100,
	}
}

// LoadProfile reads a YAML profile, filling unset fields from the
// defaults. An empty path returns the defaults unchanged.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("reading profile: %w", err)
	}

	var loaded Profile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return profile, fmt.Errorf("parsing profile: %w", err)
	}

	if len(loaded.Distribution) > 0 {
		profile.Distribution = loaded.Distribution
	}
	if len(loaded.MarksTable) > 0 {
		profile.MarksTable = loaded.MarksTable
	}
	if loaded.SimilarityThreshold > 0 {
		profile.SimilarityThreshold = loaded.SimilarityThreshold
	}
	if loaded.SyllabusWeight > 0 {
		profile.SyllabusWeight = loaded.SyllabusWeight
	}
	if loaded.FrequencyWeight > 0 {
		profile.FrequencyWeight = loaded.FrequencyWeight
	}
	if loaded.MinQuestions > 0 {
		profile.MinQuestions = loaded.MinQuestions
	}
	if loaded.MaxQuestions > 0 {
		profile.MaxQuestions = loaded.MaxQuestions
	}
	if loaded.TotalMarks > 0 {
		profile.TotalMarks = loaded.TotalMarks
	}

	if err := profile.Validate(); err != nil {
		return DefaultProfile(), err
	}
	return profile, nil
}

// Validate rejects profiles that would produce degenerate papers.
func (p Profile) Validate() error {
	if p.SimilarityThreshold <= 0 || p.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0, 1], got %v", p.SimilarityThreshold)
	}
	for level, pct := range p.Distribution {
		if pct < 0 {
			return fmt.Errorf("bloom_distribution[%s] is negative", level)
		}
	}
	for level, marks := range p.MarksTable {
		if marks <= 0 {
			return fmt.Errorf("marks_per_question[%s] must be positive", level)
		}
	}
	if p.MinQuestions > p.MaxQuestions {
		return fmt.Errorf("min_questions %d exceeds max_questions %d", p.MinQuestions, p.MaxQuestions)
	}
	return nil
}
