// Package patterns mines structural statistics from syllabus text and
// historical trends from past examination papers.
package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/paperforge/paperforge/internal/pastpapers"
)

var (
	numberedItemRe = regexp.MustCompile(`(?m)^\s*\d+[.)]`)
	bulletItemRe   = regexp.MustCompile(`(?m)^\s*[•●■▪-]`)
	unitCountRe    = regexp.MustCompile(`(?i)\b(?:unit|module|chapter)\s+\d+`)

	numberedTopicRe = regexp.MustCompile(`^\d+[.)]\s+(.+)$`)
	colonTopicRe    = regexp.MustCompile(`^\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+)*:`)
	headerTopicRe   = regexp.MustCompile(`(?i)^(?:unit|module|chapter|section)\s+\d+[:\s]+(.+)$`)
)

// maxReportedTopics caps the topic list carried in an Analysis.
const maxReportedTopics = 20

// StructureStats counts structural elements of a syllabus text.
type StructureStats struct {
	NumberedItems int `json:"numbered_items"`
	BulletedItems int `json:"bulleted_items"`
	UnitsModules  int `json:"units_or_modules"`
	TotalLines    int `json:"total_lines"`
	NonEmptyLines int `json:"non_empty_lines"`
}

// TopicStats summarizes topics found by the analyzer's own extraction,
// which is intentionally independent of the priority scorer's.
type TopicStats struct {
	Count            int      `json:"count"`
	Topics           []string `json:"topics"`
	AvgWordsPerTopic float64  `json:"avg_words_per_topic"`
}

// MarksStats aggregates per-paper marks figures.
type MarksStats struct {
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Avg   float64 `json:"avg"`
	Total int     `json:"total"`
}

// HistoricalStats aggregates figures across all supplied past papers.
type HistoricalStats struct {
	PaperCount           int                `json:"paper_count"`
	AvgQuestionsPerPaper float64            `json:"avg_questions_per_paper"`
	MinQuestions         int                `json:"min_questions"`
	MaxQuestions         int                `json:"max_questions"`
	Marks                MarksStats         `json:"marks"`
	CommonMarks          []int              `json:"common_marks"`
	BloomPercentages     map[string]float64 `json:"bloom_percentages"`
}

// Analysis is the result of one Analyze call.
type Analysis struct {
	Structure        StructureStats   `json:"structure"`
	Topics           TopicStats       `json:"topics"`
	Historical       *HistoricalStats `json:"historical,omitempty"`
	TopicFrequencies []TopicFrequency `json:"topic_frequencies,omitempty"`
	QuestionTypes    map[string]int   `json:"question_types,omitempty"`
}

// TopicFrequency is the share of past papers containing a topic.
type TopicFrequency struct {
	Topic     string  `json:"topic"`
	Frequency float64 `json:"frequency"`
}

// Analyzer discovers patterns in syllabi and past papers. The last analysis
// is retained for Recommendations.
type Analyzer struct {
	last *Analysis
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze computes structure and topic statistics for the syllabus, plus
// historical aggregates when past papers are supplied.
func (a *Analyzer) Analyze(syllabusText string, past []pastpapers.Paper) *Analysis {
	analysis := &Analysis{
		Structure: analyzeStructure(syllabusText),
		Topics:    analyzeTopics(syllabusText),
	}
	if len(past) > 0 {
		analysis.Historical = analyzeHistory(past)
		analysis.TopicFrequencies = topicFrequencies(past)
		analysis.QuestionTypes = questionTypes(past)
	}
	a.last = analysis
	return analysis
}

func analyzeStructure(text string) StructureStats {
	lines := strings.Split(text, "\n")
	nonEmpty := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty++
		}
	}
	return StructureStats{
		NumberedItems: len(numberedItemRe.FindAllString(text, -1)),
		BulletedItems: len(bulletItemRe.FindAllString(text, -1)),
		UnitsModules:  len(unitCountRe.FindAllString(text, -1)),
		TotalLines:    len(lines),
		NonEmptyLines: nonEmpty,
	}
}

func analyzeTopics(text string) TopicStats {
	var topics []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case numberedTopicRe.MatchString(line):
			topics = append(topics, strings.TrimSpace(numberedTopicRe.FindStringSubmatch(line)[1]))
		case colonTopicRe.MatchString(line):
			topics = append(topics, line)
		case headerTopicRe.MatchString(line):
			topics = append(topics, strings.TrimSpace(headerTopicRe.FindStringSubmatch(line)[1]))
		}
	}

	stats := TopicStats{Count: len(topics)}
	totalWords := 0
	for _, t := range topics {
		totalWords += len(strings.Fields(t))
	}
	if len(topics) > 0 {
		stats.AvgWordsPerTopic = float64(totalWords) / float64(len(topics))
	}
	if len(topics) > maxReportedTopics {
		topics = topics[:maxReportedTopics]
	}
	stats.Topics = topics
	return stats
}

func analyzeHistory(past []pastpapers.Paper) *HistoricalStats {
	stats := &HistoricalStats{
		PaperCount: len(past),
		// Conventional exam marks values, matching the planner's table.
		CommonMarks: []int{2, 3, 5, 8, 10, 15},
	}

	totalQuestions := 0
	totalMarksSum := 0
	papersWithMarks := 0
	levelCounts := make(map[string]int)

	for i, p := range past {
		n := len(p.Questions)
		totalQuestions += n
		if i == 0 || n < stats.MinQuestions {
			stats.MinQuestions = n
		}
		if n > stats.MaxQuestions {
			stats.MaxQuestions = n
		}

		paperMarks := 0
		for _, q := range p.Questions {
			paperMarks += q.Marks
			if q.Level != "" {
				levelCounts[strings.ToLower(q.Level)]++
			}
		}
		if n > 0 {
			totalMarksSum += paperMarks
			if papersWithMarks == 0 || paperMarks < stats.Marks.Min {
				stats.Marks.Min = paperMarks
			}
			if paperMarks > stats.Marks.Max {
				stats.Marks.Max = paperMarks
			}
			papersWithMarks++
		}
	}

	if len(past) > 0 {
		stats.AvgQuestionsPerPaper = float64(totalQuestions) / float64(len(past))
	}
	stats.Marks.Total = totalMarksSum
	if papersWithMarks > 0 {
		stats.Marks.Avg = float64(totalMarksSum) / float64(papersWithMarks)
	}

	// Bloom distribution across the combined question pool.
	combined := 0
	for _, c := range levelCounts {
		combined += c
	}
	stats.BloomPercentages = make(map[string]float64, len(levelCounts))
	for level, c := range levelCounts {
		if combined > 0 {
			stats.BloomPercentages[level] = float64(c) / float64(combined) * 100
		}
	}
	return stats
}

func topicFrequencies(past []pastpapers.Paper) []TopicFrequency {
	papersWithTopic := make(map[string]int)
	for _, p := range past {
		seen := make(map[string]struct{})
		for _, q := range p.Questions {
			if q.Topic == "" {
				continue
			}
			if _, dup := seen[q.Topic]; dup {
				continue
			}
			seen[q.Topic] = struct{}{}
			papersWithTopic[q.Topic]++
		}
	}

	freqs := make([]TopicFrequency, 0, len(papersWithTopic))
	for topic, count := range papersWithTopic {
		freqs = append(freqs, TopicFrequency{
			Topic:     topic,
			Frequency: float64(count) / float64(len(past)),
		})
	}
	sort.SliceStable(freqs, func(i, j int) bool {
		if freqs[i].Frequency != freqs[j].Frequency {
			return freqs[i].Frequency > freqs[j].Frequency
		}
		return freqs[i].Topic < freqs[j].Topic
	})
	return freqs
}

// FrequencyMap converts the ranked frequencies to the lookup the priority
// scorer consumes.
func FrequencyMap(freqs []TopicFrequency) map[string]float64 {
	m := make(map[string]float64, len(freqs))
	for _, f := range freqs {
		m[f.Topic] = f.Frequency
	}
	return m
}

func questionTypes(past []pastpapers.Paper) map[string]int {
	counts := make(map[string]int)
	for _, p := range past {
		for _, q := range p.Questions {
			counts[questionType(q)]++
		}
	}
	return counts
}

func questionType(q pastpapers.Question) string {
	var band string
	switch {
	case q.Marks <= 2:
		band = "Very Short Answer"
	case q.Marks <= 5:
		band = "Short Answer"
	case q.Marks <= 10:
		band = "Medium Answer"
	default:
		band = "Long Answer"
	}

	text := strings.ToLower(q.Text)
	switch {
	case strings.Contains(text, "define") || strings.Contains(text, "what is"):
		band += " (Definition)"
	case strings.Contains(text, "explain"):
		band += " (Explanation)"
	case strings.Contains(text, "compare") || strings.Contains(text, "difference"):
		band += " (Comparison)"
	case strings.Contains(text, "derive") || strings.Contains(text, "prove"):
		band += " (Derivation/Proof)"
	}
	return band
}

// Recommendations derives rule-based advice from the last Analyze call.
func (a *Analyzer) Recommendations() []string {
	if a.last == nil {
		return []string{"No patterns analyzed yet. Run an analysis first."}
	}

	var recs []string
	switch {
	case a.last.Topics.Count < 5:
		recs = append(recs, "Low number of topics detected. Consider adding more specific topics to the syllabus.")
	case a.last.Topics.Count > 30:
		recs = append(recs, "High number of topics. Consider grouping related topics for better organization.")
	}

	if h := a.last.Historical; h != nil {
		if h.AvgQuestionsPerPaper > 0 {
			recs = append(recs, fmt.Sprintf(
				"Historical average: %.0f questions per paper. Aim for a similar count for consistency.",
				h.AvgQuestionsPerPaper))
		}
		higherOrder := h.BloomPercentages["analyze"] + h.BloomPercentages["evaluate"] + h.BloomPercentages["create"]
		if len(h.BloomPercentages) > 0 && higherOrder < 20 {
			recs = append(recs, "Consider adding more higher-order thinking questions (Analyze, Evaluate, Create levels).")
		}
	}

	var hot []string
	for _, f := range a.last.TopicFrequencies {
		if f.Frequency > 0.7 {
			hot = append(hot, f.Topic)
		}
	}
	if len(hot) > 0 {
		if len(hot) > 3 {
			hot = hot[:3]
		}
		recs = append(recs, fmt.Sprintf(
			"High-frequency topics detected: %s. Ensure adequate coverage of these topics.",
			strings.Join(hot, ", ")))
	}

	if len(recs) == 0 {
		recs = append(recs, "Patterns look balanced. Proceed with generation.")
	}
	return recs
}
