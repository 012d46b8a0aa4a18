// Package ats (Attestation Type System) holds the attestation model and the
// claim expansion that feeds conflict classification.
//
// # Overview
//
// Attestations follow the pattern:
//
//	[Subjects] [Predicates] [Contexts] by [Actors] at [Timestamp]
//
// A single attestation can name several subjects, predicates, contexts and
// actors. Before conflicts can be found it is expanded into individual
// claims, one per combination, and those claims are grouped by their
// (subject, predicate, context) key. Any group holding more than one claim is
// a conflict candidate.
//
//	as := types.As{
//	    ID:         "SW001",
//	    Subjects:   []string{"LUKE", "LEIA"},
//	    Predicates: []string{"member_of"},
//	    Contexts:   []string{"REBELLION"},
//	    Actors:     []string{"human:mon-mothma", "llm:gpt-4"},
//	}
//	claims := ats.ExpandCartesianClaims([]types.As{as}) // 2×1×1×2 = 4 claims
//	groups := ats.GroupClaimsByKey(claims)              // 2 groups, 2 claims each
//
// # Package Structure
//
//   - ats/                    - Claim expansion and grouping
//   - ats/types/              - Attestation and claim data models
//   - ats/ax/classification/  - Conflict classification
//   - ats/bridge/             - JSON entry points
//   - ats/ingestion/          - NDJSON attestation reader and file feed
package ats
