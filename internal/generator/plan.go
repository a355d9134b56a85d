// Package generator plans how many questions each Bloom level gets and
// orchestrates the generation service into a full question set, falling
// back to placeholders when the service cannot deliver.
package generator

import "github.com/paperforge/paperforge/internal/bloom"

// PlanEntry is the per-level share of a paper.
type PlanEntry struct {
	Count            int
	MarksPerQuestion int
	MarksAllocated   int
}

// fallbackMarksPerQuestion is used for levels missing from the marks table.
const fallbackMarksPerQuestion = 5

// DefaultMarksTable returns the typical marks-per-question for each level.
func DefaultMarksTable() map[bloom.Level]int {
	return map[bloom.Level]int{
		bloom.Remember:   2,
		bloom.Understand: 3,
		bloom.Apply:      5,
		bloom.Analyze:    8,
		bloom.Evaluate:   10,
		bloom.Create:     15,
	}
}

// DefaultDistribution is the balanced paper profile used when the caller
// does not supply one.
func DefaultDistribution() bloom.Distribution {
	return bloom.Distribution{
		bloom.Remember:   20,
		bloom.Understand: 20,
		bloom.Apply:      20,
		bloom.Analyze:    20,
		bloom.Evaluate:   10,
		bloom.Create:     10,
	}
}

// BuildPlan allocates floor(totalMarks·pct/100) marks to each level in the
// distribution and derives a question count of max(1, allocated/perQ).
// Levels whose allocation rounds to zero are left out of the plan entirely.
// A nil marksTable uses the default table.
func BuildPlan(dist bloom.Distribution, totalMarks int, marksTable map[bloom.Level]int) map[bloom.Level]PlanEntry {
	if marksTable == nil {
		marksTable = DefaultMarksTable()
	}

	plan := make(map[bloom.Level]PlanEntry, len(dist))
	for level, pct := range dist {
		allocated := int(pct * float64(totalMarks) / 100)
		if allocated <= 0 {
			continue
		}
		perQ, ok := marksTable[level]
		if !ok || perQ <= 0 {
			perQ = fallbackMarksPerQuestion
		}
		count := allocated / perQ
		if count < 1 {
			count = 1
		}
		plan[level] = PlanEntry{
			Count:            count,
			MarksPerQuestion: perQ,
			MarksAllocated:   allocated,
		}
	}
	return plan
}
