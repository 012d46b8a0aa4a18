package classification

// TemporalConfig holds configurable time windows for classification.
// All windows are in milliseconds.
type TemporalConfig struct {
	VerificationWindowMs int64 `json:"verification_window_ms"` // Default: 1 minute
	EvolutionWindowMs    int64 `json:"evolution_window_ms"`    // Default: 24 hours
	ObsolescenceWindowMs int64 `json:"obsolescence_window_ms"` // Default: 365 days
}

// DefaultTemporalConfig returns sensible defaults for temporal configuration
func DefaultTemporalConfig() TemporalConfig {
	return TemporalConfig{
		VerificationWindowMs: 60_000,
		EvolutionWindowMs:    86_400_000,
		ObsolescenceWindowMs: 31_536_000_000,
	}
}

// ConflictType represents the kind of disagreement a claim group shows
type ConflictType string

const (
	ConflictEvolution    ConflictType = "Evolution"    // Same actor, claims spread over time
	ConflictVerification ConflictType = "Verification" // Same predicate, claims made together
	ConflictCoexistence  ConflictType = "Coexistence"  // Multiple valid contexts
	ConflictSupersession ConflictType = "Supersession" // Human overrides machine
	ConflictReview       ConflictType = "Review"       // Nothing else matched
)

// Resolution strategies attached to classified conflicts
const (
	StrategyShowLatest           = "show_latest"
	StrategyShowAllSources       = "show_all_sources"
	StrategyShowAllContexts      = "show_all_contexts"
	StrategyShowHighestAuthority = "show_highest_authority"
	StrategyHumanReview          = "human_review"
)

// Strategy returns the resolution strategy for the type, before any
// confidence downgrade.
func (t ConflictType) Strategy() string {
	switch t {
	case ConflictEvolution:
		return StrategyShowLatest
	case ConflictVerification:
		return StrategyShowAllSources
	case ConflictCoexistence:
		return StrategyShowAllContexts
	case ConflictSupersession:
		return StrategyShowHighestAuthority
	default:
		return StrategyHumanReview
	}
}

// AutoResolvable reports whether the type resolves without a human.
func (t ConflictType) AutoResolvable() bool {
	return t != ConflictReview
}

// ActorRanking represents an actor's ranking in conflict resolution
type ActorRanking struct {
	Actor       string           `json:"actor"`
	Credibility ActorCredibility `json:"credibility"`
	Timestamp   *int64           `json:"timestamp"` // ms; nil when the ranking is not tied to a claim
}

// Conflict is a classified claim group
type Conflict struct {
	Subject         string         `json:"subject"`
	Predicate       string         `json:"predicate"`
	Context         string         `json:"context"`
	Type            ConflictType   `json:"conflict_type"`
	Confidence      float64        `json:"confidence"`
	Strategy        string         `json:"strategy"`
	ActorHierarchy  []ActorRanking `json:"actor_hierarchy"`
	TemporalPattern string         `json:"temporal_pattern"`
	AutoResolved    bool           `json:"auto_resolved"`
	SourceIDs       []string       `json:"source_ids"`
}

// ClassificationResult represents the result of conflict classification
type ClassificationResult struct {
	Conflicts      []Conflict `json:"conflicts"`
	AutoResolved   int        `json:"auto_resolved"`
	ReviewRequired int        `json:"review_required"`
	TotalAnalyzed  int        `json:"total_analyzed"`
}
