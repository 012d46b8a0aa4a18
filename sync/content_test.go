package sync

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/errors"
)

var fixedTS = time.UnixMilli(1_750_000_000_000).UTC()

func baseAttestation() types.As {
	return types.As{
		ID:         "as-abc123",
		Subjects:   []string{"user-1"},
		Predicates: []string{"member"},
		Contexts:   []string{"team-eng"},
		Actors:     []string{"hr-system"},
		Timestamp:  fixedTS,
		Source:     "cli",
	}
}

// Digest shared with the other qntx-core implementations
func TestContentHash_KnownVector(t *testing.T) {
	as := baseAttestation()
	assert.Equal(t, "32d057b17fe5314d184df9de98ebd19aed924c0eae171b553512e6a5ec627fb6", ContentHashHex(&as))
}

func TestContentHash_Deterministic(t *testing.T) {
	as := baseAttestation()
	assert.Equal(t, ContentHash(&as), ContentHash(&as))
}

func TestContentHash_MillisecondResolution(t *testing.T) {
	a := baseAttestation()
	b := baseAttestation()
	b.Timestamp = b.Timestamp.Add(999 * time.Microsecond)

	assert.Equal(t, ContentHash(&a), ContentHash(&b), "sub-millisecond precision is not part of the digest")
}

func TestContentHash_DifferentContent(t *testing.T) {
	base := baseAttestation()

	tests := []struct {
		name   string
		mutate func(*types.As)
	}{
		{"different subject", func(a *types.As) { a.Subjects = []string{"user-2"} }},
		{"extra subject", func(a *types.As) { a.Subjects = []string{"user-1", "user-2"} }},
		{"different predicate", func(a *types.As) { a.Predicates = []string{"admin"} }},
		{"different context", func(a *types.As) { a.Contexts = []string{"team-ops"} }},
		{"different actor", func(a *types.As) { a.Actors = []string{"other-sys"} }},
		{"different timestamp", func(a *types.As) { a.Timestamp = fixedTS.Add(time.Millisecond) }},
		{"different source", func(a *types.As) { a.Source = "api" }},
		{"value moved across fields", func(a *types.As) {
			a.Subjects = []string{"member"}
			a.Predicates = []string{"user-1"}
		}},
	}

	baseHash := ContentHash(&base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modified := baseAttestation()
			tt.mutate(&modified)
			assert.NotEqual(t, baseHash, ContentHash(&modified))
		})
	}
}

func TestContentHash_IgnoresNonSemanticFields(t *testing.T) {
	base := baseAttestation()
	baseHash := ContentHash(&base)

	tests := []struct {
		name   string
		mutate func(*types.As)
	}{
		{"different ASID", func(a *types.As) { a.ID = "as-999" }},
		{"attributes", func(a *types.As) { a.Attributes = map[string]interface{}{"color": "red"} }},
		{"created at", func(a *types.As) { a.CreatedAt = time.Now() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modified := baseAttestation()
			tt.mutate(&modified)
			assert.Equal(t, baseHash, ContentHash(&modified))
		})
	}
}

// Property: permuting any list field leaves the digest unchanged.
func TestContentHash_PermutationInvariant(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("reversed lists hash the same", prop.ForAll(
		func(subjects, predicates, contexts, actors []string, ts int64) bool {
			a := types.As{
				Subjects:   subjects,
				Predicates: predicates,
				Contexts:   contexts,
				Actors:     actors,
				Timestamp:  time.UnixMilli(ts),
				Source:     "prop",
			}
			b := a
			b.Subjects = reversed(subjects)
			b.Predicates = reversed(predicates)
			b.Contexts = reversed(contexts)
			b.Actors = reversed(actors)
			return ContentHash(&a) == ContentHash(&b)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.Int64Range(0, 4_000_000_000_000),
	))

	properties.TestingRun(t)
}

func reversed(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[len(ss)-1-i] = s
	}
	return out
}

func TestCanonical_DoesNotMutateInput(t *testing.T) {
	input := []string{"c", "a", "b"}
	assert.Equal(t, []byte("a\x00b\x00c"), canonical(input))
	assert.Equal(t, []string{"c", "a", "b"}, input)
}

func TestParseHash(t *testing.T) {
	as := baseAttestation()
	h := ContentHash(&as)

	parsed, err := ParseHash(HexHash(h))
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	upper, err := ParseHash("32D057B17FE5314D184DF9DE98EBD19AED924C0EAE171B553512E6A5EC627FB6")
	require.NoError(t, err)
	assert.Equal(t, h, upper)

	for _, bad := range []string{"", "abc", HexHash(h) + "00", "zz" + HexHash(h)[2:]} {
		_, err := ParseHash(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	}
}

func TestHashEncodings(t *testing.T) {
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", HexHash(Hash{}))
	assert.Equal(t, "11111111111111111111111111111111", Base58Hash(Hash{}))

	as := baseAttestation()
	assert.NotEmpty(t, Base58Hash(ContentHash(&as)))
	assert.Less(t, len(Base58Hash(ContentHash(&as))), 64)
}
