package ats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/qntx-core/ats/types"
)

func TestBasicCartesianExpansion(t *testing.T) {
	// Characters can operate in multiple factions across multiple locations
	as := types.As{
		ID:         "SW001",
		Subjects:   []string{"LUKE", "LEIA"},
		Predicates: []string{"operates_in", "located_at"},
		Contexts:   []string{"REBELLION", "TATOOINE"},
		Actors:     []string{"imperial-records"},
		Timestamp:  time.UnixMilli(1_000),
		Source:     "test",
	}

	claims := ExpandCartesianClaims([]types.As{as})

	// 2×2×2×1 = 8 individual claims
	require.Len(t, claims, 8)

	// Loop nesting is subject → predicate → context → actor
	expected := []struct {
		subject, predicate, context string
	}{
		{"LUKE", "operates_in", "REBELLION"},
		{"LUKE", "operates_in", "TATOOINE"},
		{"LUKE", "located_at", "REBELLION"},
		{"LUKE", "located_at", "TATOOINE"},
		{"LEIA", "operates_in", "REBELLION"},
		{"LEIA", "operates_in", "TATOOINE"},
		{"LEIA", "located_at", "REBELLION"},
		{"LEIA", "located_at", "TATOOINE"},
	}
	for i, e := range expected {
		assert.Equal(t, e.subject, claims[i].Subject)
		assert.Equal(t, e.predicate, claims[i].Predicate)
		assert.Equal(t, e.context, claims[i].Context)
		assert.Equal(t, "imperial-records", claims[i].Actor)
		assert.Equal(t, "SW001", claims[i].SourceID)
		assert.Equal(t, int64(1_000), claims[i].TimestampMs)
	}
}

func TestSingleDimensionAttestation(t *testing.T) {
	as := types.As{
		ID:         "SW002",
		Subjects:   []string{"YODA"},
		Predicates: []string{"trained_by"},
		Contexts:   []string{"JEDI-ORDER"},
		Actors:     []string{"jedi-archives"},
		Timestamp:  time.UnixMilli(2_000),
		Source:     "test",
	}

	claims := ExpandCartesianClaims([]types.As{as})
	require.Len(t, claims, 1)

	assert.Equal(t, types.IndividualClaim{
		Subject:     "YODA",
		Predicate:   "trained_by",
		Context:     "JEDI-ORDER",
		Actor:       "jedi-archives",
		TimestampMs: 2_000,
		SourceID:    "SW002",
	}, claims[0])
}

func TestMultipleActorsExpand(t *testing.T) {
	as := types.As{
		ID:         "SW003",
		Subjects:   []string{"HAN"},
		Predicates: []string{"pilots"},
		Contexts:   []string{"FALCON"},
		Actors:     []string{"human:chewie", "llm:c3po", "system:r2d2"},
		Timestamp:  time.UnixMilli(3_000),
	}

	claims := ExpandCartesianClaims([]types.As{as})
	require.Len(t, claims, 3)
	assert.Equal(t, "human:chewie", claims[0].Actor)
	assert.Equal(t, "llm:c3po", claims[1].Actor)
	assert.Equal(t, "system:r2d2", claims[2].Actor)
}

func TestExpandEmptyDimension(t *testing.T) {
	as := types.As{
		ID:         "SW004",
		Subjects:   []string{"VADER"},
		Predicates: []string{"commands"},
		Contexts:   nil,
		Actors:     []string{"imperial-records"},
	}

	assert.Empty(t, ExpandCartesianClaims([]types.As{as}))
	assert.Empty(t, ExpandCartesianClaims(nil))
}

func TestExpandPreservesInputOrder(t *testing.T) {
	first := types.As{ID: "A", Subjects: []string{"S"}, Predicates: []string{"p"}, Contexts: []string{"c"}, Actors: []string{"a"}}
	second := types.As{ID: "B", Subjects: []string{"S"}, Predicates: []string{"p"}, Contexts: []string{"c"}, Actors: []string{"a"}}

	claims := ExpandCartesianClaims([]types.As{first, second})
	require.Len(t, claims, 2)
	assert.Equal(t, "A", claims[0].SourceID)
	assert.Equal(t, "B", claims[1].SourceID)
}

func TestGroupClaimsByKey(t *testing.T) {
	claims := []types.IndividualClaim{
		{Subject: "LUKE", Predicate: "is", Context: "jedi", Actor: "obi-wan", TimestampMs: 1, SourceID: "1"},
		{Subject: "LEIA", Predicate: "is", Context: "general", Actor: "rebellion", TimestampMs: 2, SourceID: "2"},
		{Subject: "LUKE", Predicate: "is", Context: "jedi", Actor: "yoda", TimestampMs: 3, SourceID: "3"},
	}

	groups := GroupClaimsByKey(claims)
	require.Len(t, groups, 2)

	// Ascending key order
	assert.Equal(t, "LEIA|is|general", groups[0].Key)
	assert.Equal(t, "LUKE|is|jedi", groups[1].Key)

	// Input order within a group
	require.Len(t, groups[1].Claims, 2)
	assert.Equal(t, "obi-wan", groups[1].Claims[0].Actor)
	assert.Equal(t, "yoda", groups[1].Claims[1].Actor)

	assert.False(t, groups[0].IsConflict())
	assert.True(t, groups[1].IsConflict())
}

func TestGroupClaimsByKeyEmpty(t *testing.T) {
	assert.Empty(t, GroupClaimsByKey(nil))
}

func TestConflictingGroups(t *testing.T) {
	claims := []types.IndividualClaim{
		{Subject: "LUKE", Predicate: "is", Context: "jedi", Actor: "obi-wan"},
		{Subject: "LUKE", Predicate: "is", Context: "jedi", Actor: "yoda"},
		{Subject: "HAN", Predicate: "is", Context: "smuggler", Actor: "jabba"},
	}

	conflicts := ConflictingGroups(GroupClaimsByKey(claims))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "LUKE|is|jedi", conflicts[0].Key)
}

func TestDedupSourceIDs(t *testing.T) {
	claims := []types.IndividualClaim{
		{SourceID: "SW010"},
		{SourceID: "SW002"},
		{SourceID: "SW010"},
		{SourceID: "SW001"},
		{SourceID: "SW002"},
	}

	assert.Equal(t, []string{"SW010", "SW002", "SW001"}, DedupSourceIDs(claims))
	assert.Equal(t, []string{}, DedupSourceIDs(nil))
}
