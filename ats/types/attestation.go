package types

import (
	"encoding/json"
	"time"
)

// As represents an attestation - a verifiable claim about subjects,
// predicates, and contexts with actor attribution and timestamps.
//
// The list fields are ordered for display but carry set semantics: order and
// duplicates have no meaning for hashing or classification.
type As struct {
	ID         string                 `json:"id"`                   // ASID: storage identity, not content identity
	Subjects   []string               `json:"subjects"`             // Entities being attested about
	Predicates []string               `json:"predicates"`           // What is being claimed
	Contexts   []string               `json:"contexts"`             // "of" context
	Actors     []string               `json:"actors"`               // Who made the attestation
	Timestamp  time.Time              `json:"timestamp"`            // When attestation was made
	Source     string                 `json:"source"`               // How attestation was created
	Attributes map[string]interface{} `json:"attributes,omitempty"` // Arbitrary JSON, excluded from hashing
	CreatedAt  time.Time              `json:"created_at"`           // Local ingestion time, excluded from hashing
}

// asWire is the JSON shape shared with the other qntx-core implementations:
// timestamps travel as Unix milliseconds.
type asWire struct {
	ID         string                 `json:"id"`
	Subjects   []string               `json:"subjects"`
	Predicates []string               `json:"predicates"`
	Contexts   []string               `json:"contexts"`
	Actors     []string               `json:"actors"`
	Timestamp  int64                  `json:"timestamp"`
	Source     string                 `json:"source"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	CreatedAt  int64                  `json:"created_at"`
}

// MarshalJSON encodes timestamps as Unix milliseconds.
func (as As) MarshalJSON() ([]byte, error) {
	w := asWire{
		ID:         as.ID,
		Subjects:   as.Subjects,
		Predicates: as.Predicates,
		Contexts:   as.Contexts,
		Actors:     as.Actors,
		Timestamp:  as.Timestamp.UnixMilli(),
		Source:     as.Source,
		Attributes: as.Attributes,
	}
	if !as.CreatedAt.IsZero() {
		w.CreatedAt = as.CreatedAt.UnixMilli()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes Unix millisecond timestamps. A missing created_at
// decodes to the zero time.
func (as *As) UnmarshalJSON(data []byte) error {
	var w asWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*as = As{
		ID:         w.ID,
		Subjects:   w.Subjects,
		Predicates: w.Predicates,
		Contexts:   w.Contexts,
		Actors:     w.Actors,
		Timestamp:  time.UnixMilli(w.Timestamp).UTC(),
		Source:     w.Source,
		Attributes: w.Attributes,
	}
	if w.CreatedAt != 0 {
		as.CreatedAt = time.UnixMilli(w.CreatedAt).UTC()
	}
	return nil
}

// TimestampMs returns the attestation timestamp in Unix milliseconds, the
// resolution used by hashing and classification.
func (as *As) TimestampMs() int64 {
	return as.Timestamp.UnixMilli()
}

// IsExistenceAttestation returns true if this is a simple existence attestation
func (as *As) IsExistenceAttestation() bool {
	return len(as.Predicates) == 1 && as.Predicates[0] == "_" &&
		len(as.Contexts) == 1 && as.Contexts[0] == "_"
}

// HasMultipleDimensions returns true if this attestation has multiple subjects, predicates, or contexts
func (as *As) HasMultipleDimensions() bool {
	return len(as.Subjects) > 1 || len(as.Predicates) > 1 || len(as.Contexts) > 1
}

// CartesianCount returns the number of individual claims this attestation
// expands into: |subjects| × |predicates| × |contexts| × |actors|.
func (as *As) CartesianCount() int {
	return len(as.Subjects) * len(as.Predicates) * len(as.Contexts) * len(as.Actors)
}
