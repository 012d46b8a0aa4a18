package bridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teranos/qntx-core/ats"
	"github.com/teranos/qntx-core/ats/ax/classification"
	"github.com/teranos/qntx-core/ats/types"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/sync"
)

type classifyInput struct {
	ClaimGroups     []types.ClaimGroup            `json:"claim_groups"`
	Config          classification.TemporalConfig `json:"config"`
	NowMs           int64                         `json:"now_ms"`
	ReviewThreshold *float64                      `json:"review_threshold"`
	Workers         int                           `json:"workers"`
}

// expandAttestation is the compact attestation shape accepted by
// expand_claims_json: only the fields expansion reads, timestamp in ms.
type expandAttestation struct {
	ID          string   `json:"id"`
	Subjects    []string `json:"subjects"`
	Predicates  []string `json:"predicates"`
	Contexts    []string `json:"contexts"`
	Actors      []string `json:"actors"`
	TimestampMs int64    `json:"timestamp_ms"`
}

type expandInput struct {
	Attestations []expandAttestation `json:"attestations"`
}

type expandOutput struct {
	Claims []types.IndividualClaim `json:"claims"`
	Total  int                     `json:"total"`
}

type claimsInput struct {
	Claims []types.IndividualClaim `json:"claims"`
}

type groupOutput struct {
	Groups      []types.ClaimGroup `json:"groups"`
	TotalGroups int                `json:"total_groups"`
}

type dedupOutput struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

type hashOutput struct {
	Hash string `json:"hash"`
}

// ClassifyClaims classifies claim groups. Absent config fields fall back to
// the defaults; an absent review_threshold uses DefaultReviewThreshold and an
// explicit 0 never asks for review.
func ClassifyClaims(input string) string {
	return respond("invalid classify input", func() (interface{}, error) {
		// Decoding over the defaults keeps any window the caller leaves out
		in := classifyInput{Config: classification.DefaultTemporalConfig()}
		if err := decode(schemaClassify, input, &in); err != nil {
			return nil, err
		}

		opts := classification.Options{
			Config:          in.Config,
			ReviewThreshold: in.ReviewThreshold,
			Workers:         in.Workers,
		}

		return classification.NewSmartClassifier(opts).Classify(in.ClaimGroups, in.NowMs), nil
	})
}

// ExpandClaimsJSON expands compact attestations into individual claims.
func ExpandClaimsJSON(input string) string {
	return respond("invalid expand input", func() (interface{}, error) {
		var in expandInput
		if err := decode(schemaExpand, input, &in); err != nil {
			return nil, err
		}

		attestations := make([]types.As, len(in.Attestations))
		for i, a := range in.Attestations {
			attestations[i] = types.As{
				ID:         a.ID,
				Subjects:   a.Subjects,
				Predicates: a.Predicates,
				Contexts:   a.Contexts,
				Actors:     a.Actors,
				Timestamp:  time.UnixMilli(a.TimestampMs).UTC(),
			}
		}

		claims := ats.ExpandCartesianClaims(attestations)
		return expandOutput{Claims: claims, Total: len(claims)}, nil
	})
}

// GroupClaimsJSON groups claims by subject|predicate|context.
func GroupClaimsJSON(input string) string {
	return respond("invalid group input", func() (interface{}, error) {
		var in claimsInput
		if err := decode(schemaClaims, input, &in); err != nil {
			return nil, err
		}

		groups := ats.GroupClaimsByKey(in.Claims)
		if groups == nil {
			groups = []types.ClaimGroup{}
		}
		return groupOutput{Groups: groups, TotalGroups: len(groups)}, nil
	})
}

// DedupSourceIDsJSON collapses claims to their unique source ids.
func DedupSourceIDsJSON(input string) string {
	return respond("invalid dedup input", func() (interface{}, error) {
		var in claimsInput
		if err := decode(schemaClaims, input, &in); err != nil {
			return nil, err
		}

		ids := ats.DedupSourceIDs(in.Claims)
		return dedupOutput{IDs: ids, Total: len(ids)}, nil
	})
}

// ContentHashJSON returns the hex content hash of a full attestation.
func ContentHashJSON(input string) string {
	return respond("invalid attestation JSON", func() (interface{}, error) {
		var as types.As
		if err := decode(schemaAttestation, input, &as); err != nil {
			return nil, err
		}
		return hashOutput{Hash: sync.ContentHashHex(&as)}, nil
	})
}

// decode validates input against a schema, then unmarshals it into v.
func decode(schema, input string, v interface{}) error {
	if err := validate(schema, input); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(input), v); err != nil {
		return errors.Mark(err, errors.ErrInvalidInput)
	}
	return nil
}

// respond runs fn and renders its result, or {"error": ...} prefixed with
// the entry point's error label. A panic is reported the same way.
func respond(label string, fn func() (interface{}, error)) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = errorJSON(fmt.Sprintf("%s: %v", label, r))
		}
	}()

	result, err := fn()
	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			return errorJSON(label + ": " + err.Error())
		}
		return errorJSON(err.Error())
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return errorJSON("serialization failed: " + err.Error())
	}
	return string(raw)
}

func errorJSON(msg string) string {
	raw, _ := json.Marshal(map[string]string{"error": msg})
	return string(raw)
}
