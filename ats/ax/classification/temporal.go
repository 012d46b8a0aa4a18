package classification

import (
	"math"
	"sort"
)

// TemporalAnalyzer analyzes temporal patterns in claims
type TemporalAnalyzer struct {
	config TemporalConfig
}

// NewTemporalAnalyzer creates a new temporal analyzer with configuration
func NewTemporalAnalyzer(config TemporalConfig) *TemporalAnalyzer {
	return &TemporalAnalyzer{
		config: config,
	}
}

// Config returns the analyzer's windows
func (ta *TemporalAnalyzer) Config() TemporalConfig {
	return ta.config
}

// TemporalPattern represents different temporal relationships between claims
type TemporalPattern int

const (
	TemporalSimultaneous TemporalPattern = iota // Within verification window
	TemporalSequential                          // Clear time ordering
	TemporalOverlapping                         // Some temporal overlap
	TemporalDistributed                         // Spread over long period
)

func (p TemporalPattern) String() string {
	switch p {
	case TemporalSimultaneous:
		return "simultaneous"
	case TemporalSequential:
		return "sequential"
	case TemporalOverlapping:
		return "overlapping"
	default:
		return "distributed"
	}
}

// Confidence returns the pattern's contribution to temporal confidence
func (p TemporalPattern) Confidence() float64 {
	switch p {
	case TemporalSimultaneous:
		return 0.9 // Independent confirmation
	case TemporalSequential:
		return 0.8 // Clear evolution
	case TemporalOverlapping:
		return 0.6
	default:
		return 0.4
	}
}

// patternRule inspects sorted timestamps with at least two entries
type patternRule struct {
	match   func(ta *TemporalAnalyzer, sorted []int64) bool
	pattern TemporalPattern
}

// Evaluated in order; Overlapping is the fallback.
var patternRules = []patternRule{
	{func(ta *TemporalAnalyzer, s []int64) bool {
		return span(s) <= ta.config.VerificationWindowMs
	}, TemporalSimultaneous},
	{func(ta *TemporalAnalyzer, s []int64) bool {
		return ta.hasSequentialGaps(s)
	}, TemporalSequential},
	{func(ta *TemporalAnalyzer, s []int64) bool {
		return span(s) > ta.config.EvolutionWindowMs
	}, TemporalDistributed},
}

// AnalyzePattern determines the temporal pattern of claim timestamps.
// The input slice is not modified.
func (ta *TemporalAnalyzer) AnalyzePattern(timestamps []int64) TemporalPattern {
	if len(timestamps) <= 1 {
		return TemporalSimultaneous
	}

	sorted := sortedCopy(timestamps)
	for _, rule := range patternRules {
		if rule.match(ta, sorted) {
			return rule.pattern
		}
	}
	return TemporalOverlapping
}

// hasSequentialGaps checks sorted timestamps for a gap wider than the
// verification window
func (ta *TemporalAnalyzer) hasSequentialGaps(sorted []int64) bool {
	for i := 1; i < len(sorted); i++ {
		if subSat(sorted[i], sorted[i-1]) > ta.config.VerificationWindowMs {
			return true
		}
	}
	return false
}

// IsSimultaneous checks if two timestamps are within verification window
func (ta *TemporalAnalyzer) IsSimultaneous(t1, t2 int64) bool {
	return absDiff(t1, t2) <= ta.config.VerificationWindowMs
}

// IsEvolutionTimespan checks if timespan suggests natural evolution
func (ta *TemporalAnalyzer) IsEvolutionTimespan(t1, t2 int64) bool {
	d := absDiff(t1, t2)
	return d >= ta.config.VerificationWindowMs && d <= ta.config.EvolutionWindowMs
}

// IsObsolete checks if a timestamp is too old to be relevant at now
func (ta *TemporalAnalyzer) IsObsolete(timestamp, now int64) bool {
	return subSat(now, timestamp) > ta.config.ObsolescenceWindowMs
}

// RecencyScore returns a score (0.1-1.0) based on how recent a timestamp is
// relative to now. Future timestamps score 1.0.
func (ta *TemporalAnalyzer) RecencyScore(timestamp, now int64) float64 {
	age := subSat(now, timestamp)

	// Recent claims (within verification window) get full score
	if age <= ta.config.VerificationWindowMs {
		return 1.0
	}

	// Claims within evolution window decline from 1.0 to 0.5
	if age <= ta.config.EvolutionWindowMs {
		ratio := float64(age) / float64(ta.config.EvolutionWindowMs)
		return 1.0 - ratio*0.5
	}

	// Old claims decline from 0.5 to 0.1
	if age <= ta.config.ObsolescenceWindowMs {
		ratio := float64(age) / float64(ta.config.ObsolescenceWindowMs)
		return 0.5 - ratio*0.4
	}

	return 0.1
}

// TemporalConfidence returns confidence based on temporal patterns
func (ta *TemporalAnalyzer) TemporalConfidence(timestamps []int64) float64 {
	if len(timestamps) <= 1 {
		return 1.0
	}
	return ta.AnalyzePattern(timestamps).Confidence()
}

// MostRecent returns the latest timestamp, false when empty
func (ta *TemporalAnalyzer) MostRecent(timestamps []int64) (int64, bool) {
	if len(timestamps) == 0 {
		return 0, false
	}
	latest := timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts > latest {
			latest = ts
		}
	}
	return latest, true
}

// GroupByTimeWindow clusters timestamps into windows. Consecutive sorted
// timestamps within the verification window share a cluster.
func (ta *TemporalAnalyzer) GroupByTimeWindow(timestamps []int64) [][]int64 {
	if len(timestamps) == 0 {
		return nil
	}

	sorted := sortedCopy(timestamps)
	var groups [][]int64
	current := []int64{sorted[0]}

	for _, ts := range sorted[1:] {
		if ta.IsSimultaneous(ts, current[len(current)-1]) {
			current = append(current, ts)
			continue
		}
		groups = append(groups, current)
		current = []int64{ts}
	}

	return append(groups, current)
}

func sortedCopy(timestamps []int64) []int64 {
	sorted := make([]int64, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

func span(sorted []int64) int64 {
	return subSat(sorted[len(sorted)-1], sorted[0])
}

func absDiff(a, b int64) int64 {
	if a > b {
		return subSat(a, b)
	}
	return subSat(b, a)
}

// subSat returns a-b clamped to the int64 range. Timestamps at opposite ends
// of the range must not wrap into a small difference.
func subSat(a, b int64) int64 {
	d := a - b
	if (a >= 0) != (b >= 0) && (d >= 0) != (a >= 0) {
		if a >= 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return d
}
