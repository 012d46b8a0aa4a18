package types

// IndividualClaim is one atomic (subject, predicate, context, actor) fact
// implied by an attestation. It shares the attestation's timestamp and id.
type IndividualClaim struct {
	Subject     string `json:"subject"`
	Predicate   string `json:"predicate"`
	Context     string `json:"context"`
	Actor       string `json:"actor"`
	TimestampMs int64  `json:"timestamp_ms"`
	SourceID    string `json:"source_id"`
}

// KeySeparator joins the parts of a claim key.
const KeySeparator = "|"

// ClaimKey is the (subject, predicate, context) triple claims are grouped by.
// The actor is not part of the key.
type ClaimKey struct {
	Subject   string
	Predicate string
	Context   string
}

// String joins the triple with KeySeparator; it is the ClaimGroup key.
func (k ClaimKey) String() string {
	return k.Subject + KeySeparator + k.Predicate + KeySeparator + k.Context
}

// Key returns the claim's grouping key.
func (c IndividualClaim) Key() ClaimKey {
	return ClaimKey{Subject: c.Subject, Predicate: c.Predicate, Context: c.Context}
}

// ClaimGroup collects claims sharing one ClaimKey.
// Only groups holding more than one claim are conflicts.
type ClaimGroup struct {
	Key    string            `json:"key"`
	Claims []IndividualClaim `json:"claims"`
}

// IsConflict reports whether the group holds more than one claim.
func (g ClaimGroup) IsConflict() bool {
	return len(g.Claims) > 1
}
