package ats

import (
	"sort"

	"github.com/teranos/qntx-core/ats/types"
)

// ExpandCartesianClaims expands multi-dimensional attestations into individual
// claims. Each attestation yields |S|×|P|×|C|×|A| claims sharing its timestamp
// and id; results are concatenated in input order.
func ExpandCartesianClaims(attestations []types.As) []types.IndividualClaim {
	total := 0
	for i := range attestations {
		total += attestations[i].CartesianCount()
	}

	claims := make([]types.IndividualClaim, 0, total)
	for i := range attestations {
		as := &attestations[i]
		ts := as.TimestampMs()
		for _, subject := range as.Subjects {
			for _, predicate := range as.Predicates {
				for _, context := range as.Contexts {
					for _, actor := range as.Actors {
						claims = append(claims, types.IndividualClaim{
							Subject:     subject,
							Predicate:   predicate,
							Context:     context,
							Actor:       actor,
							TimestampMs: ts,
							SourceID:    as.ID,
						})
					}
				}
			}
		}
	}

	return claims
}

// GroupClaimsByKey groups claims by their (Subject, Predicate, Context) key.
// Groups are ordered by ascending key string so every implementation walks
// them in the same order; claims keep their input order within a group.
func GroupClaimsByKey(claims []types.IndividualClaim) []types.ClaimGroup {
	index := make(map[string]int)
	var groups []types.ClaimGroup

	for _, claim := range claims {
		key := claim.Key().String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, types.ClaimGroup{Key: key})
		}
		groups[i].Claims = append(groups[i].Claims, claim)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// DedupSourceIDs returns the unique source attestation ids in first-occurrence order.
func DedupSourceIDs(claims []types.IndividualClaim) []string {
	seen := make(map[string]struct{}, len(claims))
	ids := make([]string, 0)

	for _, claim := range claims {
		if _, dup := seen[claim.SourceID]; dup {
			continue
		}
		seen[claim.SourceID] = struct{}{}
		ids = append(ids, claim.SourceID)
	}

	return ids
}

// ConflictingGroups filters groups down to those holding more than one claim.
func ConflictingGroups(groups []types.ClaimGroup) []types.ClaimGroup {
	var out []types.ClaimGroup
	for _, g := range groups {
		if g.IsConflict() {
			out = append(out, g)
		}
	}
	return out
}
