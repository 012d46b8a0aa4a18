package classification

import (
	"math"
	"strings"
)

// DefaultReviewThreshold is the confidence below which a conflict needs a human
const DefaultReviewThreshold = 0.3

// ClaimTiming is the part of a claim that confidence scoring looks at
type ClaimTiming struct {
	Actor       string
	TimestampMs int64
	Predicate   string
}

// ConfidenceCalculator calculates confidence scores for conflict resolution
type ConfidenceCalculator struct {
	ranker           *CredibilityRanker
	temporalAnalyzer *TemporalAnalyzer
	reviewThreshold  float64 // Below this threshold = human review required
}

// NewConfidenceCalculator creates a new confidence calculator. A nil ranker
// classifies actors by naming rules only.
func NewConfidenceCalculator(ranker *CredibilityRanker, ta *TemporalAnalyzer, reviewThreshold float64) *ConfidenceCalculator {
	if ranker == nil {
		ranker = NewCredibilityRanker(nil)
	}
	return &ConfidenceCalculator{
		ranker:           ranker,
		temporalAnalyzer: ta,
		reviewThreshold:  reviewThreshold,
	}
}

// Calculate returns a confidence score in [0, 1] for a set of claims
func (cc *ConfidenceCalculator) Calculate(claims []ClaimTiming, now int64) float64 {
	if len(claims) == 0 {
		return 0.0
	}

	if len(claims) == 1 {
		return cc.singleClaimConfidence(claims[0], now)
	}

	baseScore := 0.5

	// Independent source bonus (+0.3 max)
	sourceBonus := cc.sourceDiversityBonus(claims)

	// Actor credibility bonus (+0.2 max)
	credibilityBonus := cc.credibilityBonus(claims)

	// Temporal pattern bonus (-0.04 to +0.16)
	temporalBonus := cc.temporalBonus(claims)

	// Recency bonus (+0.1 max)
	recencyBonus := cc.recencyBonus(claims, now)

	// Consistency bonus (+0.1 max)
	consistencyBonus := cc.consistencyBonus(claims)

	totalScore := baseScore + sourceBonus + credibilityBonus + temporalBonus + recencyBonus + consistencyBonus

	return math.Min(totalScore, 1.0)
}

// singleClaimConfidence weights credibility more heavily than recency
func (cc *ConfidenceCalculator) singleClaimConfidence(claim ClaimTiming, now int64) float64 {
	credibility := cc.ranker.Credibility(claim.Actor)
	recency := cc.temporalAnalyzer.RecencyScore(claim.TimestampMs, now)
	return credibility.Score()*0.7 + recency*0.3
}

func (cc *ConfidenceCalculator) sourceDiversityBonus(claims []ClaimTiming) float64 {
	uniqueActors := make(map[string]struct{})
	for _, claim := range claims {
		uniqueActors[claim.Actor] = struct{}{}
	}

	independentCount := len(uniqueActors)
	if independentCount <= 1 {
		return 0.0
	}

	bonus := float64(independentCount-1) * 0.1
	return math.Min(bonus, 0.3)
}

func (cc *ConfidenceCalculator) credibilityBonus(claims []ClaimTiming) float64 {
	return cc.ranker.Highest(actorsOf(claims)).Score() * 0.2
}

func (cc *ConfidenceCalculator) temporalBonus(claims []ClaimTiming) float64 {
	temporalConfidence := cc.temporalAnalyzer.TemporalConfidence(timestampsOf(claims))
	return (temporalConfidence - 0.5) * 0.4
}

func (cc *ConfidenceCalculator) recencyBonus(claims []ClaimTiming, now int64) float64 {
	mostRecent, ok := cc.temporalAnalyzer.MostRecent(timestampsOf(claims))
	if !ok {
		return 0.0
	}
	return cc.temporalAnalyzer.RecencyScore(mostRecent, now) * 0.1
}

func (cc *ConfidenceCalculator) consistencyBonus(claims []ClaimTiming) float64 {
	predicates := distinct(claims, func(c ClaimTiming) string { return c.Predicate })

	// All claims agree on the predicate
	if len(predicates) == 1 {
		return 0.1
	}

	// Different but related (e.g. developer / senior_developer)
	if areRelatedPredicates(predicates) {
		return 0.05
	}

	return 0.0
}

// areRelatedPredicates reports whether one distinct predicate starts or ends
// with another
func areRelatedPredicates(predicates []string) bool {
	for i, p1 := range predicates {
		for j, p2 := range predicates {
			if i != j && (strings.HasPrefix(p1, p2) || strings.HasSuffix(p1, p2)) {
				return true
			}
		}
	}
	return false
}

// RequiresReview returns true if confidence is below review threshold
func (cc *ConfidenceCalculator) RequiresReview(confidence float64) bool {
	return confidence < cc.reviewThreshold
}

// Level returns a human-readable confidence level
func Level(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.6:
		return "medium"
	case confidence >= 0.4:
		return "low"
	default:
		return "very_low"
	}
}

// ActorAgreement returns the share of claims backing the most common predicate
func ActorAgreement(claims []ClaimTiming) float64 {
	if len(claims) <= 1 {
		return 1.0
	}

	counts := make(map[string]int)
	maxAgreement := 0
	for _, claim := range claims {
		counts[claim.Predicate]++
		if counts[claim.Predicate] > maxAgreement {
			maxAgreement = counts[claim.Predicate]
		}
	}

	return float64(maxAgreement) / float64(len(claims))
}

func actorsOf(claims []ClaimTiming) []string {
	actors := make([]string, len(claims))
	for i, claim := range claims {
		actors[i] = claim.Actor
	}
	return actors
}

func timestampsOf(claims []ClaimTiming) []int64 {
	timestamps := make([]int64, len(claims))
	for i, claim := range claims {
		timestamps[i] = claim.TimestampMs
	}
	return timestamps
}

// distinct returns the distinct values of field in first-occurrence order
func distinct[T any](items []T, field func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		v := field(item)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
