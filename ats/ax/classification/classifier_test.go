package classification

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/qntx-core/ats/types"
)

// The Attestation Chronicles: testing smart classification in the transition
// from centralized Matrix control to decentralized resistance networks.

const now = int64(1_700_000_000_000)

func claim(subject, predicate, context, actor string, ts int64, source string) types.IndividualClaim {
	return types.IndividualClaim{
		Subject:     subject,
		Predicate:   predicate,
		Context:     context,
		Actor:       actor,
		TimestampMs: ts,
		SourceID:    source,
	}
}

func group(claims ...types.IndividualClaim) types.ClaimGroup {
	c := claims[0]
	return types.ClaimGroup{Key: c.Subject + "|" + c.Predicate + "|" + c.Context, Claims: claims}
}

func classifyOne(t *testing.T, sc *SmartClassifier, g types.ClaimGroup) Conflict {
	t.Helper()
	result := sc.Classify([]types.ClaimGroup{g}, now)
	require.Len(t, result.Conflicts, 1)
	return result.Conflicts[0]
}

func defaultClassifier() *SmartClassifier {
	return NewSmartClassifier(Options{Config: DefaultTemporalConfig()})
}

func TestSmartClassifier_EvolutionDetection(t *testing.T) {
	// Alice's progression from junior to senior, attested by herself
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("ALICE", "is_junior_dev", "GitHub", "human:alice", now-200_000, "as1"),
		claim("ALICE", "is_senior_dev", "GitHub", "human:alice", now, "as2"),
	))

	assert.Equal(t, ConflictEvolution, conflict.Type)
	assert.Equal(t, StrategyShowLatest, conflict.Strategy)
	assert.Greater(t, conflict.Confidence, 0.8)
	assert.True(t, conflict.AutoResolved)
	assert.Equal(t, "sequential", conflict.TemporalPattern)
}

func TestSmartClassifier_SimultaneousVerification(t *testing.T) {
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("ALICE", "is_author", "GitHub", "human:alice", now-5_000, "as1"),
		claim("ALICE", "is_author", "GitHub", "system:ci", now, "as2"),
	))

	assert.Equal(t, ConflictVerification, conflict.Type)
	assert.Equal(t, StrategyShowAllSources, conflict.Strategy)
	assert.Greater(t, conflict.Confidence, 0.7)
	assert.True(t, conflict.AutoResolved)
	assert.Equal(t, "simultaneous", conflict.TemporalPattern)
}

func TestSmartClassifier_DifferentContexts(t *testing.T) {
	// Same role in two places, both valid
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("ALICE", "is_maintainer", "GitHub", "human:alice", now-120_000, "as1"),
		claim("ALICE", "is_maintainer", "GitLab", "human:bob", now, "as2"),
	))

	assert.Equal(t, ConflictCoexistence, conflict.Type)
	assert.Equal(t, StrategyShowAllContexts, conflict.Strategy)
	assert.Greater(t, conflict.Confidence, 0.9)
	assert.True(t, conflict.AutoResolved)
}

func TestSmartClassifier_HumanSupersession(t *testing.T) {
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("ALICE", "is_author", "GitHub", "llm:gpt-4", now-10_000, "as1"),
		claim("ALICE", "is_reviewer", "GitHub", "human:alice", now, "as2"),
	))

	assert.Equal(t, ConflictSupersession, conflict.Type)
	assert.Equal(t, StrategyShowHighestAuthority, conflict.Strategy)
	assert.Greater(t, conflict.Confidence, 0.9)
	assert.True(t, conflict.AutoResolved)

	// Human first in the hierarchy
	require.Len(t, conflict.ActorHierarchy, 2)
	assert.Equal(t, "human:alice", conflict.ActorHierarchy[0].Actor)
	assert.Equal(t, CredibilityHuman, conflict.ActorHierarchy[0].Credibility)
	assert.Equal(t, "llm:gpt-4", conflict.ActorHierarchy[1].Actor)
}

func TestSmartClassifier_RequiresReview(t *testing.T) {
	// CYPHER's loyalty: untrusted sources disagree and nothing explains it
	sc := defaultClassifier()
	result := sc.Classify([]types.ClaimGroup{group(
		claim("CYPHER", "resistance_member", "NEBUCHADNEZZAR", "unknown-informant", now-30*60_000, "as1"),
		claim("CYPHER", "agent_collaborator", "NEBUCHADNEZZAR", "matrix-surveillance", now-25*60_000, "as2"),
	)}, now)

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, ConflictReview, conflict.Type)
	assert.Equal(t, StrategyHumanReview, conflict.Strategy)
	assert.False(t, conflict.AutoResolved)

	assert.Equal(t, 1, result.TotalAnalyzed)
	assert.Equal(t, 0, result.AutoResolved)
	assert.Equal(t, 1, result.ReviewRequired)
}

// A low-confidence conflict keeps auto_resolved from its type while its
// strategy drops to human_review.
func TestSmartClassifier_AutoResolvedWithHumanReviewStrategy(t *testing.T) {
	cfg := DefaultTemporalConfig()
	threshold := 0.95
	sc := NewSmartClassifier(Options{Config: cfg, ReviewThreshold: &threshold})

	old := now - 2*cfg.ObsolescenceWindowMs
	result := sc.Classify([]types.ClaimGroup{group(
		claim("SERAPH", "guards", "ORACLE", "unknown-a", old, "as1"),
		claim("SERAPH", "guards", "ORACLE", "unknown-b", old, "as2"),
	)}, now)

	require.Len(t, result.Conflicts, 1)
	conflict := result.Conflicts[0]
	assert.Equal(t, ConflictVerification, conflict.Type)
	assert.Less(t, conflict.Confidence, 0.95)
	assert.Equal(t, StrategyHumanReview, conflict.Strategy)
	assert.True(t, conflict.AutoResolved)

	assert.Equal(t, 1, result.AutoResolved)
	assert.Equal(t, 0, result.ReviewRequired)
}

func TestSmartClassifier_ReviewThresholdOption(t *testing.T) {
	cfg := DefaultTemporalConfig()

	sc := NewSmartClassifier(Options{Config: cfg})
	assert.True(t, sc.confidenceCalculator.RequiresReview(DefaultReviewThreshold-0.01))

	zero := 0.0
	sc = NewSmartClassifier(Options{Config: cfg, ReviewThreshold: &zero})
	assert.False(t, sc.confidenceCalculator.RequiresReview(0))
	assert.False(t, sc.confidenceCalculator.RequiresReview(DefaultReviewThreshold-0.01))
}

// Timestamps at both ends of the int64 range are as far apart as possible,
// not simultaneous.
func TestSmartClassifier_ExtremeTimestamps(t *testing.T) {
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("SATI", "exists", "MACHINE_CITY", "program-a", math.MinInt64, "as1"),
		claim("SATI", "exists", "MACHINE_CITY", "program-b", math.MaxInt64, "as2"),
	))

	assert.Equal(t, ConflictReview, conflict.Type)
	assert.Equal(t, "sequential", conflict.TemporalPattern)
	assert.Less(t, conflict.Confidence, 1.0)
}

func TestSmartClassifier_TypePriority(t *testing.T) {
	sc := defaultClassifier()

	// Same actor, different contexts and a wide gap: Evolution beats Coexistence
	conflict := classifyOne(t, sc, group(
		claim("NEO", "located_in", "MATRIX", "human:morpheus", now-3_600_000, "as1"),
		claim("NEO", "located_in", "ZION", "human:morpheus", now, "as2"),
	))
	assert.Equal(t, ConflictEvolution, conflict.Type)

	// Same predicate within window across contexts: Verification beats Coexistence
	conflict = classifyOne(t, sc, group(
		claim("NEO", "located_in", "MATRIX", "human:morpheus", now-1_000, "as1"),
		claim("NEO", "located_in", "ZION", "llm:oracle-gpt", now, "as2"),
	))
	assert.Equal(t, ConflictVerification, conflict.Type)

	// Different contexts with a human and a machine: Coexistence beats Supersession
	conflict = classifyOne(t, sc, group(
		claim("NEO", "is_the_one", "MATRIX", "human:morpheus", now-600_000, "as1"),
		claim("NEO", "is_anomaly", "SOURCE", "system:architect", now, "as2"),
	))
	assert.Equal(t, ConflictCoexistence, conflict.Type)
}

func TestSmartClassifier_VerificationWindowBoundary(t *testing.T) {
	sc := defaultClassifier()
	window := DefaultTemporalConfig().VerificationWindowMs

	// Exactly one window apart is still simultaneous
	conflict := classifyOne(t, sc, group(
		claim("TRINITY", "pilot", "NEBUCHADNEZZAR", "human:morpheus", now-window, "as1"),
		claim("TRINITY", "pilot", "NEBUCHADNEZZAR", "human:morpheus", now, "as2"),
	))
	assert.Equal(t, ConflictVerification, conflict.Type)

	// One millisecond more is evolution
	conflict = classifyOne(t, sc, group(
		claim("TRINITY", "pilot", "NEBUCHADNEZZAR", "human:morpheus", now-window-1, "as1"),
		claim("TRINITY", "pilot", "NEBUCHADNEZZAR", "human:morpheus", now, "as2"),
	))
	assert.Equal(t, ConflictEvolution, conflict.Type)
}

func TestSmartClassifier_VerificationUsesEveryPair(t *testing.T) {
	// Each claim is within a window of the first, but the outer two are not
	// within a window of each other.
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("TANK", "operator", "NEBUCHADNEZZAR", "human:morpheus", now, "as1"),
		claim("TANK", "operator", "NEBUCHADNEZZAR", "system:ship", now-50_000, "as2"),
		claim("TANK", "operator", "NEBUCHADNEZZAR", "llm:gpt-ops", now+50_000, "as3"),
	))
	assert.NotEqual(t, ConflictVerification, conflict.Type)
	assert.Equal(t, ConflictSupersession, conflict.Type)
}

func TestSmartClassifier_CustomConfig(t *testing.T) {
	sc := NewSmartClassifier(Options{Config: TemporalConfig{
		VerificationWindowMs: 1_000,
		EvolutionWindowMs:    10_000,
		ObsolescenceWindowMs: 100_000,
	}})

	conflict := classifyOne(t, sc, group(
		claim("MOUSE", "programmer", "NEBUCHADNEZZAR", "human:morpheus", now-5_000, "as1"),
		claim("MOUSE", "programmer", "NEBUCHADNEZZAR", "human:morpheus", now, "as2"),
	))
	assert.Equal(t, ConflictEvolution, conflict.Type)
}

func TestSmartClassifier_SkipsSingletons(t *testing.T) {
	sc := defaultClassifier()
	result := sc.Classify([]types.ClaimGroup{
		group(claim("ORACLE", "bakes", "KITCHEN", "human:neo", now, "as1")),
		{Key: "empty"},
	}, now)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, 0, result.TotalAnalyzed)
	assert.Equal(t, 0, result.AutoResolved)
	assert.Equal(t, 0, result.ReviewRequired)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"conflicts":[]`)
}

func TestSmartClassifier_OutputFollowsInputOrder(t *testing.T) {
	sc := NewSmartClassifier(Options{Config: DefaultTemporalConfig(), Workers: 4})

	var groups []types.ClaimGroup
	for i := 0; i < 64; i++ {
		subject := fmt.Sprintf("AGENT-%03d", 63-i)
		groups = append(groups, group(
			claim(subject, "hunts", "MATRIX", "system:agent-smith", now-1_000, "a"),
			claim(subject, "hunts", "MATRIX", "human:neo", now, "b"),
		))
	}

	result := sc.Classify(groups, now)
	require.Len(t, result.Conflicts, 64)
	for i, c := range result.Conflicts {
		assert.Equal(t, fmt.Sprintf("AGENT-%03d", 63-i), c.Subject)
	}
	assert.Equal(t, 64, result.TotalAnalyzed)
	assert.Equal(t, 64, result.AutoResolved)
}

func TestSmartClassifier_SourceIDsSortedUnique(t *testing.T) {
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("LINK", "operator", "LOGOS", "human:niobe", now, "as3"),
		claim("LINK", "operator", "LOGOS", "system:ship", now, "as1"),
		claim("LINK", "operator", "LOGOS", "llm:gpt-4", now, "as3"),
	))

	assert.Equal(t, []string{"as1", "as3"}, conflict.SourceIDs)
}

func TestSmartClassifier_ActorHierarchyOnePerClaim(t *testing.T) {
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("ZEE", "mechanic", "ZION", "system:dock", now-2_000, "as1"),
		claim("ZEE", "mechanic", "ZION", "human:link", now-1_000, "as2"),
		claim("ZEE", "mechanic", "ZION", "system:dock", now, "as3"),
	))

	require.Len(t, conflict.ActorHierarchy, 3)
	assert.Equal(t, "human:link", conflict.ActorHierarchy[0].Actor)

	// Ties keep input order and carry their own claim's timestamp
	require.NotNil(t, conflict.ActorHierarchy[1].Timestamp)
	require.NotNil(t, conflict.ActorHierarchy[2].Timestamp)
	assert.Equal(t, now-2_000, *conflict.ActorHierarchy[1].Timestamp)
	assert.Equal(t, now, *conflict.ActorHierarchy[2].Timestamp)
}

func TestSmartClassifier_Overrides(t *testing.T) {
	sc := NewSmartClassifier(Options{
		Config:    DefaultTemporalConfig(),
		Overrides: map[string]ActorCredibility{"zion-command": CredibilityHuman},
	})

	assert.Equal(t, CredibilityHuman, sc.Credibility("zion-command"))
	assert.Equal(t, CredibilityExternal, defaultClassifier().Credibility("zion-command"))

	conflict := classifyOne(t, sc, group(
		claim("NIOBE", "captain", "LOGOS", "zion-command", now-5_000, "as1"),
		claim("NIOBE", "pilot", "LOGOS", "llm:gpt-4", now, "as2"),
	))
	assert.Equal(t, ConflictSupersession, conflict.Type)
}

func TestSmartClassifier_ClassifyAttestations(t *testing.T) {
	as := []types.As{
		{
			ID:         "as1",
			Subjects:   []string{"NEO"},
			Predicates: []string{"is_the_one"},
			Contexts:   []string{"MATRIX"},
			Actors:     []string{"human:morpheus", "llm:oracle-gpt"},
		},
	}

	result := defaultClassifier().ClassifyAttestations(as, now)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "NEO", result.Conflicts[0].Subject)
	assert.Equal(t, []string{"as1"}, result.Conflicts[0].SourceIDs)
}

func TestConflictJSONShape(t *testing.T) {
	conflict := classifyOne(t, defaultClassifier(), group(
		claim("ALICE", "is_author", "GitHub", "human:alice", now-5_000, "as1"),
		claim("ALICE", "is_author", "GitHub", "system:ci", now, "as2"),
	))

	out, err := json.Marshal(conflict)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Verification", decoded["conflict_type"])
	assert.Equal(t, "simultaneous", decoded["temporal_pattern"])

	hierarchy := decoded["actor_hierarchy"].([]interface{})
	first := hierarchy[0].(map[string]interface{})
	assert.Equal(t, "Human", first["credibility"])
	assert.Equal(t, float64(now-5_000), first["timestamp"])
}
