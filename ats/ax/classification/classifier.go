package classification

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/qntx-core/ats"
	"github.com/teranos/qntx-core/ats/types"
)

// Options configures a SmartClassifier. A nil ReviewThreshold means
// DefaultReviewThreshold; 0 disables review. Workers 0 means GOMAXPROCS.
type Options struct {
	Config          TemporalConfig
	ReviewThreshold *float64
	Overrides       map[string]ActorCredibility // exact actor id → tier
	Workers         int
}

// SmartClassifier performs advanced conflict classification and resolution.
// It holds no mutable state and is safe for concurrent use.
type SmartClassifier struct {
	ranker               *CredibilityRanker
	temporalAnalyzer     *TemporalAnalyzer
	confidenceCalculator *ConfidenceCalculator
	config               TemporalConfig
	workers              int
}

// NewSmartClassifier creates a new smart classification engine
func NewSmartClassifier(opts Options) *SmartClassifier {
	threshold := DefaultReviewThreshold
	if opts.ReviewThreshold != nil {
		threshold = *opts.ReviewThreshold
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cr := NewCredibilityRanker(opts.Overrides)
	ta := NewTemporalAnalyzer(opts.Config)

	return &SmartClassifier{
		ranker:               cr,
		temporalAnalyzer:     ta,
		confidenceCalculator: NewConfidenceCalculator(cr, ta, threshold),
		config:               opts.Config,
		workers:              workers,
	}
}

// Classify classifies every group holding more than one claim. Conflicts are
// reported in input group order regardless of how the work was scheduled.
func (sc *SmartClassifier) Classify(groups []types.ClaimGroup, now int64) ClassificationResult {
	var candidates []types.ClaimGroup
	for _, g := range groups {
		if g.IsConflict() {
			candidates = append(candidates, g)
		}
	}

	conflicts := make([]Conflict, len(candidates))

	var eg errgroup.Group
	eg.SetLimit(sc.workers)
	for i := range candidates {
		eg.Go(func() error {
			conflicts[i] = sc.classifyGroup(candidates[i].Claims, now)
			return nil
		})
	}
	_ = eg.Wait() // classifyGroup never fails

	result := ClassificationResult{
		Conflicts:     conflicts,
		TotalAnalyzed: len(conflicts),
	}
	for _, c := range conflicts {
		if c.AutoResolved {
			result.AutoResolved++
		} else if c.Type == ConflictReview {
			result.ReviewRequired++
		}
	}
	return result
}

// ClassifyAttestations expands, groups and classifies attestations
func (sc *SmartClassifier) ClassifyAttestations(attestations []types.As, now int64) ClassificationResult {
	return sc.Classify(ats.GroupClaimsByKey(ats.ExpandCartesianClaims(attestations)), now)
}

// classifyGroup classifies a single conflict situation
func (sc *SmartClassifier) classifyGroup(claims []types.IndividualClaim, now int64) Conflict {
	timings := make([]ClaimTiming, len(claims))
	for i, claim := range claims {
		timings[i] = ClaimTiming{
			Actor:       claim.Actor,
			TimestampMs: claim.TimestampMs,
			Predicate:   claim.Predicate,
		}
	}

	confidence := sc.confidenceCalculator.Calculate(timings, now)
	conflictType := sc.determineType(claims)

	strategy := conflictType.Strategy()
	if sc.confidenceCalculator.RequiresReview(confidence) {
		strategy = StrategyHumanReview
	}

	return Conflict{
		Subject:         claims[0].Subject,
		Predicate:       claims[0].Predicate,
		Context:         claims[0].Context,
		Type:            conflictType,
		Confidence:      confidence,
		Strategy:        strategy,
		ActorHierarchy:  sc.actorHierarchy(claims),
		TemporalPattern: sc.temporalAnalyzer.AnalyzePattern(timestampsOf(timings)).String(),
		// Derived from the type alone; a low-confidence conflict can be
		// auto-resolved while its strategy says human_review.
		AutoResolved: conflictType.AutoResolvable(),
		SourceIDs:    sortedSourceIDs(claims),
	}
}

// typeRule matches a claim group with at least two claims
type typeRule struct {
	match        func(sc *SmartClassifier, claims []types.IndividualClaim) bool
	conflictType ConflictType
}

// Evaluated in order; Review is the fallback.
var typeRules = []typeRule{
	{(*SmartClassifier).isSameActorEvolution, ConflictEvolution},
	{(*SmartClassifier).isSimultaneousVerification, ConflictVerification},
	{(*SmartClassifier).isDifferentContexts, ConflictCoexistence},
	{(*SmartClassifier).hasHumanSupersession, ConflictSupersession},
}

func (sc *SmartClassifier) determineType(claims []types.IndividualClaim) ConflictType {
	for _, rule := range typeRules {
		if rule.match(sc, claims) {
			return rule.conflictType
		}
	}
	return ConflictReview
}

// isSameActorEvolution checks for one actor with claims spread beyond the
// verification window
func (sc *SmartClassifier) isSameActorEvolution(claims []types.IndividualClaim) bool {
	if len(distinct(claims, func(c types.IndividualClaim) string { return c.Actor })) != 1 {
		return false
	}
	return sc.temporalAnalyzer.hasSequentialGaps(sortedCopy(claimTimestamps(claims)))
}

// isSimultaneousVerification checks for one predicate with every pair of
// claims inside the verification window
func (sc *SmartClassifier) isSimultaneousVerification(claims []types.IndividualClaim) bool {
	if len(distinct(claims, func(c types.IndividualClaim) string { return c.Predicate })) != 1 {
		return false
	}
	return span(sortedCopy(claimTimestamps(claims))) <= sc.config.VerificationWindowMs
}

func (sc *SmartClassifier) isDifferentContexts(claims []types.IndividualClaim) bool {
	return len(distinct(claims, func(c types.IndividualClaim) string { return c.Context })) > 1
}

// hasHumanSupersession checks for a human alongside a non-human actor
func (sc *SmartClassifier) hasHumanSupersession(claims []types.IndividualClaim) bool {
	hasHuman, hasNonHuman := false, false
	for _, claim := range claims {
		if sc.ranker.Credibility(claim.Actor).IsHuman() {
			hasHuman = true
		} else {
			hasNonHuman = true
		}
	}
	return hasHuman && hasNonHuman
}

// actorHierarchy ranks one entry per claim, highest credibility first
func (sc *SmartClassifier) actorHierarchy(claims []types.IndividualClaim) []ActorRanking {
	rankings := make([]ActorRanking, len(claims))
	for i, claim := range claims {
		ts := claim.TimestampMs
		rankings[i] = ActorRanking{
			Actor:       claim.Actor,
			Credibility: sc.ranker.Credibility(claim.Actor),
			Timestamp:   &ts,
		}
	}
	sortRankings(rankings)
	return rankings
}

// Credibility returns the tier the classifier assigns to an actor
func (sc *SmartClassifier) Credibility(actor string) ActorCredibility {
	return sc.ranker.Credibility(actor)
}

// Config returns the classifier's temporal windows
func (sc *SmartClassifier) Config() TemporalConfig {
	return sc.config
}

func sortedSourceIDs(claims []types.IndividualClaim) []string {
	ids := ats.DedupSourceIDs(claims)
	sort.Strings(ids)
	return ids
}

func claimTimestamps(claims []types.IndividualClaim) []int64 {
	timestamps := make([]int64, len(claims))
	for i, claim := range claims {
		timestamps[i] = claim.TimestampMs
	}
	return timestamps
}

