package am

import (
	"os"

	"github.com/spf13/viper"

	"github.com/teranos/qntx-core/ats/ax/classification"
	"github.com/teranos/qntx-core/sync"
)

// File permissions for config files written by qntx
const (
	DefaultDirPermissions  = 0o755
	DefaultFilePermissions = 0o644
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	temporal := classification.DefaultTemporalConfig()

	// Classification defaults
	v.SetDefault("classify.verification_window_ms", temporal.VerificationWindowMs) // 1 minute
	v.SetDefault("classify.evolution_window_ms", temporal.EvolutionWindowMs)       // 1 day
	v.SetDefault("classify.obsolescence_window_ms", temporal.ObsolescenceWindowMs) // 1 year
	v.SetDefault("classify.review_threshold", classification.DefaultReviewThreshold)
	v.SetDefault("classify.workers", 0)

	// Sync defaults
	v.SetDefault("sync.name", defaultNodeName())
	v.SetDefault("sync.protocol_version", sync.ProtocolVersion)

	// Log defaults
	v.SetDefault("log.json", false)
}

// Default returns the built-in configuration, ignoring files and environment
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode; a failure here is a programming error
		panic(err)
	}
	return cfg
}

func defaultNodeName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "qntx"
}
