package am

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/qntx-core/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Windows: 0 collapses the tier, negative is invalid
	if c.Classify.VerificationWindowMs < 0 {
		return errors.Newf("classify.verification_window_ms must be >= 0, got %d", c.Classify.VerificationWindowMs)
	}
	if c.Classify.EvolutionWindowMs < 0 {
		return errors.Newf("classify.evolution_window_ms must be >= 0, got %d", c.Classify.EvolutionWindowMs)
	}
	if c.Classify.ObsolescenceWindowMs < 0 {
		return errors.Newf("classify.obsolescence_window_ms must be >= 0, got %d", c.Classify.ObsolescenceWindowMs)
	}

	// Recency tiers interpolate between windows, so they must be ordered
	if c.Classify.VerificationWindowMs >= c.Classify.EvolutionWindowMs {
		return errors.WithHint(
			errors.Newf("classify.verification_window_ms (%d) must be less than classify.evolution_window_ms (%d)",
				c.Classify.VerificationWindowMs, c.Classify.EvolutionWindowMs),
			"defaults are 60000 (1 minute) and 86400000 (1 day)")
	}
	if c.Classify.EvolutionWindowMs >= c.Classify.ObsolescenceWindowMs {
		return errors.WithHint(
			errors.Newf("classify.evolution_window_ms (%d) must be less than classify.obsolescence_window_ms (%d)",
				c.Classify.EvolutionWindowMs, c.Classify.ObsolescenceWindowMs),
			"defaults are 86400000 (1 day) and 31536000000 (1 year)")
	}

	// Review threshold is a confidence: 0 means the built-in default
	if c.Classify.ReviewThreshold < 0 || c.Classify.ReviewThreshold > 1 {
		return errors.Newf("classify.review_threshold must be within [0, 1], got %g", c.Classify.ReviewThreshold)
	}

	// Workers: 0 = GOMAXPROCS, negative = invalid
	if c.Classify.Workers < 0 {
		return errors.Newf("classify.workers must be >= 0, got %d", c.Classify.Workers)
	}

	if _, err := semver.NewVersion(c.Sync.ProtocolVersion); err != nil {
		return errors.Wrapf(err, "sync.protocol_version %q is not a semantic version", c.Sync.ProtocolVersion)
	}

	return nil
}
