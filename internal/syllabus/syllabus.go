// Package syllabus extracts topics from cleaned syllabus text and ranks
// them by priority, combining in-text weighting with historical exam
// frequency.
package syllabus

// Topic is a ranked syllabus topic. Immutable once computed; downstream
// components consume it read-only.
type Topic struct {
	Name                string  `json:"name"`
	SyllabusWeight      float64 `json:"syllabus_weight"`
	HistoricalFrequency float64 `json:"historical_frequency"`
	Occurrences         int     `json:"occurrences"`
	Priority            float64 `json:"priority"`
}

// TopTopics returns the n highest-priority topics. The input is already
// sorted descending, so this is a bounded slice.
func TopTopics(topics []Topic, n int) []Topic {
	if n > len(topics) {
		n = len(topics)
	}
	return topics[:n]
}
