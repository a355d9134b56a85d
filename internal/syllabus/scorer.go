package syllabus

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default weights for the priority formula P = w1*S + w2*F.
const (
	DefaultSyllabusWeight  = 0.6
	DefaultFrequencyWeight = 0.4

	// defaultFrequency is assumed for topics with no historical data.
	defaultFrequency = 0.5

	// minTopicWeight floors the raw weight of any extracted topic.
	minTopicWeight = 0.1

	// contextWindow is the character span inspected around a topic's first
	// occurrence for emphasis keywords.
	contextWindow = 100
)

var (
	numberedRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(\p{Lu}[^\n]+?)\s*$`)
	bulletRe   = regexp.MustCompile(`(?m)^\s*[•●■▪]\s*(\p{Lu}[^\n]+?)\s*$`)
	headerRe   = regexp.MustCompile(`(?i)(?:unit|module|chapter|section)\s+\d+[:\s]+([a-z][^\n]+)`)
	sentenceRe = regexp.MustCompile(`[.!?]`)
	dashSplit  = regexp.MustCompile(`\s+[-–—]\s+`)
)

// contextKeywords mark emphasized topics; each distinct match near the
// topic's first occurrence adds weight.
var contextKeywords = []string{
	"important", "key", "essential", "fundamental", "core",
	"critical", "major", "primary", "main",
}

var titleCaser = cases.Title(language.English)

// Scorer extracts topics from syllabus text and assigns priorities.
// Deterministic and idempotent for identical inputs.
type Scorer struct {
	SyllabusWeight  float64
	FrequencyWeight float64
}

// NewScorer creates a scorer with the default weights.
func NewScorer() *Scorer {
	return &Scorer{
		SyllabusWeight:  DefaultSyllabusWeight,
		FrequencyWeight: DefaultFrequencyWeight,
	}
}

// Score extracts topics from the syllabus text, weighs them, folds in the
// historical frequency table (topic name -> frequency in [0,1]) and returns
// the topics sorted descending by priority. Every priority lies in [0,1]
// unless all raw priorities are equal, in which case normalization is
// skipped.
func (s *Scorer) Score(text string, history map[string]float64) []Topic {
	names := extractTopics(text)
	if len(names) == 0 {
		return nil
	}

	topics := make([]Topic, 0, len(names))
	lowerText := strings.ToLower(text)
	totalWeight := 0.0
	for _, name := range names {
		occ := countOccurrences(name, text)
		weight := rawWeight(name, text, lowerText, occ)
		totalWeight += weight
		topics = append(topics, Topic{Name: name, SyllabusWeight: weight, Occurrences: occ})
	}
	if totalWeight > 0 {
		for i := range topics {
			topics[i].SyllabusWeight /= totalWeight
		}
	}

	for i := range topics {
		freq, ok := history[topics[i].Name]
		if !ok {
			freq = defaultFrequency
		}
		topics[i].HistoricalFrequency = freq
		topics[i].Priority = s.SyllabusWeight*topics[i].SyllabusWeight + s.FrequencyWeight*freq
	}

	normalizePriorities(topics)

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Priority > topics[j].Priority
	})
	return topics
}

// extractTopics finds candidate topic names via structural patterns, falling
// back to paragraph leads when the text carries no list structure.
func extractTopics(text string) []string {
	var names []string
	for _, m := range numberedRe.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}
	for _, m := range bulletRe.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}
	for _, m := range headerRe.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}

	seen := make(map[string]struct{}, len(names))
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		c := cleanTopicName(n)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}

	if len(cleaned) == 0 {
		return topicsFromParagraphs(text)
	}
	return cleaned
}

// cleanTopicName normalizes whitespace, drops a trailing "- description"
// segment, strips trailing punctuation and title-cases the result.
func cleanTopicName(name string) string {
	name = dashSplit.Split(name, 2)[0]
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimRight(name, ".:;,")
	return titleCaser.String(name)
}

// topicsFromParagraphs uses the first sentence of each of the first ten
// paragraphs as topic candidates.
func topicsFromParagraphs(text string) []string {
	paragraphs := strings.Split(text, "\n\n")
	var topics []string
	count := 0
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if count >= 10 {
			break
		}
		count++
		first := strings.TrimSpace(sentenceRe.Split(para, 2)[0])
		if len(first) > 10 && len(first) < 100 {
			topics = append(topics, first)
		}
	}
	return topics
}

func countOccurrences(topic, text string) int {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(topic) + `\b`)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// rawWeight combines occurrence count, position, emphasis context and topic
// length into an unnormalized weight.
func rawWeight(topic, text, lowerText string, occurrences int) float64 {
	weight := float64(occurrences) * 0.3

	pos := strings.Index(lowerText, strings.ToLower(topic))
	if pos >= 0 && len(text) > 0 {
		positionScore := 1.0 - float64(pos)/float64(len(text))
		weight += positionScore * 0.2

		start := pos - contextWindow
		if start < 0 {
			start = 0
		}
		end := pos + len(topic) + contextWindow
		if end > len(lowerText) {
			end = len(lowerText)
		}
		window := lowerText[start:end]
		for _, kw := range contextKeywords {
			if strings.Contains(window, kw) {
				weight += 0.5
			}
		}
	}

	if len(strings.Fields(topic)) > 3 {
		weight += 0.3
	}

	if weight < minTopicWeight {
		weight = minTopicWeight
	}
	return weight
}

// normalizePriorities min-max normalizes to [0,1]. Left untouched when all
// priorities are equal.
func normalizePriorities(topics []Topic) {
	if len(topics) == 0 {
		return
	}
	minP, maxP := topics[0].Priority, topics[0].Priority
	for _, t := range topics[1:] {
		if t.Priority < minP {
			minP = t.Priority
		}
		if t.Priority > maxP {
			maxP = t.Priority
		}
	}
	if maxP <= minP {
		return
	}
	for i := range topics {
		topics[i].Priority = (topics[i].Priority - minP) / (maxP - minP)
	}
}
