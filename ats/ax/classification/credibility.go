package classification

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/teranos/qntx-core/errors"
)

// ActorCredibility is the trust tier of an actor. Tiers are ordered:
// a higher value overrides a lower one.
type ActorCredibility int

const (
	CredibilityExternal ActorCredibility = iota // Unknown or third-party sources
	CredibilitySystem                           // Automated qntx/system processes
	CredibilityLlm                              // Language model output
	CredibilityHuman                            // Human operators
)

var credibilityNames = map[ActorCredibility]string{
	CredibilityExternal: "External",
	CredibilitySystem:   "System",
	CredibilityLlm:      "Llm",
	CredibilityHuman:    "Human",
}

// credibilityRule matches a lower-cased actor id
type credibilityRule struct {
	tier  ActorCredibility
	match func(actor string) bool
}

// Evaluated in order; the first match wins.
var credibilityRules = []credibilityRule{
	{CredibilityHuman, func(a string) bool {
		return strings.HasPrefix(a, "human:") || strings.HasSuffix(a, "@verified")
	}},
	{CredibilityLlm, func(a string) bool {
		if strings.HasPrefix(a, "llm:") {
			return true
		}
		for _, marker := range []string{"gpt", "claude", "anthropic", "openai"} {
			if strings.Contains(a, marker) {
				return true
			}
		}
		return false
	}},
	{CredibilitySystem, func(a string) bool {
		return strings.HasPrefix(a, "system:") || strings.HasPrefix(a, "qntx:")
	}},
}

// FromActor classifies an actor id by naming pattern. Matching is
// case-insensitive; unmatched ids are External.
func FromActor(actor string) ActorCredibility {
	lower := strings.ToLower(actor)
	for _, rule := range credibilityRules {
		if rule.match(lower) {
			return rule.tier
		}
	}
	return CredibilityExternal
}

// Score returns the tier's weight used by confidence scoring
func (c ActorCredibility) Score() float64 {
	switch c {
	case CredibilityHuman:
		return 1.0
	case CredibilityLlm:
		return 0.75
	case CredibilitySystem:
		return 0.5
	default:
		return 0.25
	}
}

// Overrides reports whether c strictly outranks other
func (c ActorCredibility) Overrides(other ActorCredibility) bool {
	return c > other
}

// IsHuman returns true for the Human tier
func (c ActorCredibility) IsHuman() bool {
	return c == CredibilityHuman
}

func (c ActorCredibility) String() string {
	if name, ok := credibilityNames[c]; ok {
		return name
	}
	return "External"
}

// MarshalJSON encodes the tier by name
func (c ActorCredibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a tier name
func (c *ActorCredibility) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for tier, n := range credibilityNames {
		if n == name {
			*c = tier
			return nil
		}
	}
	return errors.Wrapf(errors.ErrInvalidInput, "unknown credibility %q", name)
}

// CredibilityRanker assigns tiers to actors. Overrides are matched on the
// exact actor id before the naming rules apply.
type CredibilityRanker struct {
	overrides map[string]ActorCredibility
}

// NewCredibilityRanker creates a ranker. overrides may be nil.
func NewCredibilityRanker(overrides map[string]ActorCredibility) *CredibilityRanker {
	copied := make(map[string]ActorCredibility, len(overrides))
	for actor, tier := range overrides {
		copied[actor] = tier
	}
	return &CredibilityRanker{overrides: copied}
}

// Credibility returns the tier for an actor
func (cr *CredibilityRanker) Credibility(actor string) ActorCredibility {
	if tier, ok := cr.overrides[actor]; ok {
		return tier
	}
	return FromActor(actor)
}

// Highest returns the highest tier among actors, External when empty
func (cr *CredibilityRanker) Highest(actors []string) ActorCredibility {
	highest := CredibilityExternal
	for _, actor := range actors {
		if tier := cr.Credibility(actor); tier.Overrides(highest) {
			highest = tier
		}
	}
	return highest
}

// RankActors returns actors ranked by credibility (highest first). Ties
// keep their input order.
func (cr *CredibilityRanker) RankActors(actors []string) []ActorRanking {
	rankings := make([]ActorRanking, len(actors))
	for i, actor := range actors {
		rankings[i] = ActorRanking{
			Actor:       actor,
			Credibility: cr.Credibility(actor),
		}
	}
	sortRankings(rankings)
	return rankings
}

func sortRankings(rankings []ActorRanking) {
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Credibility.Overrides(rankings[j].Credibility)
	})
}
