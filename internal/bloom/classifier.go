package bloom

import (
	"strings"
	"unicode/utf8"
)

// keywords associated with each level. Matched as substrings of the
// lowercased question, the way examiners' verb lists are usually applied.
var keywords = map[Level][]string{
	Remember: {
		"define", "list", "recall", "identify", "name", "state", "describe",
		"recognize", "select", "label", "match", "memorize", "what", "when",
		"where", "who", "choose", "find", "show", "spell", "tell", "write",
	},
	Understand: {
		"explain", "summarize", "paraphrase", "describe", "interpret",
		"discuss", "distinguish", "predict", "associate", "estimate",
		"differentiate", "extend", "give examples", "infer", "outline",
		"relate", "rephrase", "translate", "elaborate", "comprehend",
	},
	Apply: {
		"apply", "calculate", "change", "demonstrate", "discover",
		"manipulate", "modify", "operate", "predict", "prepare",
		"produce", "relate", "show", "solve", "use", "implement",
		"construct", "develop", "organize", "utilize",
	},
	Analyze: {
		"analyze", "break down", "compare", "contrast", "diagram",
		"deconstruct", "differentiate", "discriminate", "distinguish",
		"identify", "illustrate", "infer", "outline", "relate",
		"select", "separate", "examine", "categorize", "classify",
		"investigate", "deduce",
	},
	Evaluate: {
		"appraise", "argue", "defend", "judge", "select", "support",
		"value", "critique", "weigh", "assess", "decide", "rate",
		"choose", "recommend", "justify", "prioritize", "determine",
		"evaluate", "conclude", "criticize",
	},
	Create: {
		"design", "construct", "develop", "create", "formulate",
		"author", "investigate", "compose", "generate", "modify",
		"plan", "produce", "propose", "assemble", "devise", "invent",
		"build", "synthesize", "integrate", "combine",
	},
}

// Verbs returns the keyword list for a level.
func Verbs(level Level) []string {
	return keywords[level]
}

// Classifier assigns Bloom's taxonomy levels to question texts using
// keyword scoring plus a small set of heuristics.
type Classifier struct{}

// NewClassifier creates a keyword-based classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the level for a single question. Questions that match
// nothing default to Understand. Ties resolve to the lowest level in
// canonical order.
func (c *Classifier) Classify(question string) Level {
	lower := strings.ToLower(question)
	totalRunes := utf8.RuneCountInString(lower)
	scores := make(map[Level]int, 6)

	for _, level := range Levels() {
		score := 0
		for _, kw := range keywords[level] {
			pos := strings.Index(lower, kw)
			if pos < 0 {
				continue
			}
			// Keywords near the start of the question carry more weight.
			// Offsets are measured in runes so multi-byte text does not
			// shift the boundary.
			if float64(utf8.RuneCountInString(lower[:pos])) < float64(totalRunes)*0.3 {
				score += 2
			} else {
				score++
			}
		}
		scores[level] = score
	}

	applyHeuristics(lower, scores)

	best := Understand
	bestScore := 0
	for _, level := range Levels() {
		if scores[level] > bestScore {
			best = level
			bestScore = scores[level]
		}
	}
	if bestScore == 0 {
		return Understand
	}
	return best
}

// ClassifyBatch classifies each question independently.
func (c *Classifier) ClassifyBatch(questions []string) []Level {
	levels := make([]Level, len(questions))
	for i, q := range questions {
		levels[i] = c.Classify(q)
	}
	return levels
}

func applyHeuristics(question string, scores map[Level]int) {
	if containsAny(question, "what", "who", "when", "where") {
		scores[Remember]++
	}
	if containsAny(question, "why", "how", "explain") {
		scores[Understand]++
	}
	if containsAny(question, "calculate", "compute", "solve") {
		scores[Apply] += 2
	}
	if containsAny(question, "compare", "contrast", "analyze") {
		scores[Analyze] += 2
	}
	if containsAny(question, "evaluate", "judge", "assess", "critique") {
		scores[Evaluate] += 2
	}
	if containsAny(question, "design", "create", "develop", "propose") {
		scores[Create] += 2
	}

	// Long questions tend to demand higher-order thinking.
	if len(strings.Fields(question)) > 30 {
		scores[Analyze]++
		scores[Evaluate]++
		scores[Create]++
	}

	// Multiple parts indicate higher cognitive load.
	if strings.Count(question, "?") > 1 || containsAny(question, "and", "or", "also") {
		scores[Analyze]++
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
