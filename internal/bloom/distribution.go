package bloom

// Distribution maps levels to target percentages. Percentages are
// interpreted independently and need not sum to exactly 100.
type Distribution map[Level]float64

// balanceTolerance is the gap (in percentage points) within which a level
// counts as on-target.
const balanceTolerance = 5.0

// LevelGap describes how far the current share of one level is from its
// target share.
type LevelGap struct {
	Target    float64
	Current   float64
	Gap       float64
	NeedsMore bool
	NeedsLess bool
}

// DistributionReport compares an observed set of levels against a target
// distribution.
type DistributionReport struct {
	Counts   map[Level]int
	Gaps     map[Level]LevelGap
	Balanced bool
}

// CountLevels tallies how many questions sit at each level. All six levels
// are present in the result, zero-valued when unused.
func CountLevels(levels []Level) map[Level]int {
	counts := make(map[Level]int, 6)
	for _, l := range Levels() {
		counts[l] = 0
	}
	for _, l := range levels {
		counts[l]++
	}
	return counts
}

// AnalyzeDistribution computes per-level gaps between the target
// distribution and the observed levels. A level needs more questions when
// its gap exceeds the tolerance, fewer when it falls below the negative
// tolerance; the set is balanced iff every targeted level is within
// tolerance.
func AnalyzeDistribution(levels []Level, target Distribution) DistributionReport {
	counts := CountLevels(levels)
	total := len(levels)

	gaps := make(map[Level]LevelGap, len(target))
	balanced := true
	for level, targetPct := range target {
		currentPct := 0.0
		if total > 0 {
			currentPct = float64(counts[level]) / float64(total) * 100
		}
		gap := targetPct - currentPct
		lg := LevelGap{
			Target:    targetPct,
			Current:   currentPct,
			Gap:       gap,
			NeedsMore: gap > balanceTolerance,
			NeedsLess: gap < -balanceTolerance,
		}
		if lg.NeedsMore || lg.NeedsLess {
			balanced = false
		}
		gaps[level] = lg
	}

	return DistributionReport{Counts: counts, Gaps: gaps, Balanced: balanced}
}
