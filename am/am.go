// Package am ("I am") holds the qntx configuration: the classifier's
// temporal windows and review threshold, the sync node identity, and log
// output. Configuration only feeds the CLI; the core packages receive these
// values as parameters.
package am

import (
	"fmt"

	"github.com/teranos/qntx-core/ats/ax/classification"
)

// Config represents the qntx configuration
type Config struct {
	Classify ClassifyConfig `mapstructure:"classify" toml:"classify" json:"classify" yaml:"classify"`
	Sync     SyncConfig     `mapstructure:"sync" toml:"sync" json:"sync" yaml:"sync"`
	Log      LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ClassifyConfig configures conflict classification
type ClassifyConfig struct {
	VerificationWindowMs int64   `mapstructure:"verification_window_ms" toml:"verification_window_ms" json:"verification_window_ms" yaml:"verification_window_ms"`
	EvolutionWindowMs    int64   `mapstructure:"evolution_window_ms" toml:"evolution_window_ms" json:"evolution_window_ms" yaml:"evolution_window_ms"`
	ObsolescenceWindowMs int64   `mapstructure:"obsolescence_window_ms" toml:"obsolescence_window_ms" json:"obsolescence_window_ms" yaml:"obsolescence_window_ms"`
	ReviewThreshold      float64 `mapstructure:"review_threshold" toml:"review_threshold" json:"review_threshold" yaml:"review_threshold"` // below this, strategy is human_review
	Workers              int     `mapstructure:"workers" toml:"workers" json:"workers" yaml:"workers"`                                     // 0 = GOMAXPROCS
}

// SyncConfig configures this node's identity in sync sessions
type SyncConfig struct {
	Name            string `mapstructure:"name" toml:"name" json:"name" yaml:"name"` // advertised to peers in hello (e.g., "laptop")
	ProtocolVersion string `mapstructure:"protocol_version" toml:"protocol_version" json:"protocol_version" yaml:"protocol_version"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// TemporalConfig returns the classifier windows
func (c *Config) TemporalConfig() classification.TemporalConfig {
	return classification.TemporalConfig{
		VerificationWindowMs: c.Classify.VerificationWindowMs,
		EvolutionWindowMs:    c.Classify.EvolutionWindowMs,
		ObsolescenceWindowMs: c.Classify.ObsolescenceWindowMs,
	}
}

// ClassifierOptions returns classifier options built from the [classify] section
func (c *Config) ClassifierOptions() classification.Options {
	threshold := c.Classify.ReviewThreshold
	return classification.Options{
		Config:          c.TemporalConfig(),
		ReviewThreshold: &threshold,
		Workers:         c.Classify.Workers,
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Classify: {Verification: %dms, Evolution: %dms, Threshold: %.2f}, Sync: {Name: %s}}",
		c.Classify.VerificationWindowMs, c.Classify.EvolutionWindowMs, c.Classify.ReviewThreshold, c.Sync.Name)
}
