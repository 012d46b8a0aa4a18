package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/qntx-core/ats/ax/classification"
	"github.com/teranos/qntx-core/errors"
	"github.com/teranos/qntx-core/sync"
)

// isolate points every config source at empty temp directories and clears
// the cached config. It returns the fake home directory.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvFileVar, filepath.Join(work, ".env"))
	t.Chdir(work)

	old := systemConfigPath
	systemConfigPath = filepath.Join(home, "system.toml")

	Reset()
	t.Cleanup(func() {
		systemConfigPath = old
		Reset()
	})
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), DefaultDirPermissions))
	require.NoError(t, os.WriteFile(path, []byte(content), DefaultFilePermissions))
}

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance, no files or environment
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	temporal := classification.DefaultTemporalConfig()
	assert.Equal(t, temporal, cfg.TemporalConfig())
	assert.Equal(t, classification.DefaultReviewThreshold, cfg.Classify.ReviewThreshold)
	assert.Equal(t, 0, cfg.Classify.Workers)
	assert.Equal(t, sync.ProtocolVersion, cfg.Sync.ProtocolVersion)
	assert.NotEmpty(t, cfg.Sync.Name)
	assert.False(t, cfg.Log.JSON)
	assert.NoError(t, cfg.Validate())
}

func TestDefault_MatchesLoadWithNoSources(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UserConfig(t *testing.T) {
	home := isolate(t)
	userPath := filepath.Join(home, ".qntx", "am.toml")
	writeFile(t, userPath, "[classify]\nreview_threshold = 0.5\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Classify.ReviewThreshold)
	// Untouched keys keep their defaults
	assert.Equal(t, classification.DefaultTemporalConfig().EvolutionWindowMs, cfg.Classify.EvolutionWindowMs)
	assert.Equal(t, SourceInfo{Source: SourceUser, Path: userPath}, ConfigSources["classify.review_threshold"])
}

func TestLoad_ProjectOverridesUserPerKey(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".qntx", "am.toml"), "[classify]\nreview_threshold = 0.5\nworkers = 4\n")

	// The project file sits above the working directory
	project := t.TempDir()
	projectPath := filepath.Join(project, "am.toml")
	writeFile(t, projectPath, "[classify]\nworkers = 2\n\n[sync]\nname = \"nebuchadnezzar\"\n")
	nested := filepath.Join(project, "ships", "crew")
	require.NoError(t, os.MkdirAll(nested, DefaultDirPermissions))
	t.Chdir(nested)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Classify.ReviewThreshold)
	assert.Equal(t, 2, cfg.Classify.Workers)
	assert.Equal(t, "nebuchadnezzar", cfg.Sync.Name)
	assert.Equal(t, SourceProject, ConfigSources["classify.workers"].Source)
	assert.Equal(t, SourceUser, ConfigSources["classify.review_threshold"].Source)
	want, err := filepath.EvalSymlinks(projectPath)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(GetViper().ConfigFileUsed())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_SystemIsLowestPrecedence(t *testing.T) {
	home := isolate(t)
	writeFile(t, systemConfigPath, "[classify]\nworkers = 16\nreview_threshold = 0.4\n")
	writeFile(t, filepath.Join(home, ".qntx", "am.toml"), "[classify]\nworkers = 4\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Classify.Workers)
	assert.Equal(t, 0.4, cfg.Classify.ReviewThreshold)
	assert.Equal(t, SourceSystem, ConfigSources["classify.review_threshold"].Source)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".qntx", "am.toml"), "[classify]\nworkers = 4\n")
	t.Setenv("QNTX_CLASSIFY_WORKERS", "8")
	t.Setenv("QNTX_LOG_JSON", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Classify.Workers)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	envFile := os.Getenv(EnvFileVar)
	writeFile(t, envFile, "QNTX_SYNC_NAME=zion\n")
	t.Cleanup(func() { os.Unsetenv("QNTX_SYNC_NAME") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "zion", cfg.Sync.Name)
}

func TestLoad_Cached(t *testing.T) {
	isolate(t)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)

	Reset()
	third, err := Load()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[classify]\nverification_window_ms = 30000\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), cfg.Classify.VerificationWindowMs)
	assert.Equal(t, classification.DefaultReviewThreshold, cfg.Classify.ReviewThreshold)

	_, err = LoadFromFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	writeFile(t, path, "[classify\n")
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	isolate(t)

	v, ok := Lookup("classify.review_threshold")
	assert.True(t, ok)
	assert.Equal(t, classification.DefaultReviewThreshold, v)

	_, ok = Lookup("classify.nonexistent")
	assert.False(t, ok)

	assert.Equal(t, sync.ProtocolVersion, GetString("sync.protocol_version"))
	assert.Equal(t, false, Get("log.json"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero workers is valid (GOMAXPROCS)", func(c *Config) { c.Classify.Workers = 0 }, false},
		{"negative workers", func(c *Config) { c.Classify.Workers = -1 }, true},
		{"zero threshold disables review", func(c *Config) { c.Classify.ReviewThreshold = 0 }, false},
		{"threshold of one", func(c *Config) { c.Classify.ReviewThreshold = 1 }, false},
		{"negative threshold", func(c *Config) { c.Classify.ReviewThreshold = -0.1 }, true},
		{"threshold above one", func(c *Config) { c.Classify.ReviewThreshold = 1.5 }, true},
		{"zero verification window", func(c *Config) { c.Classify.VerificationWindowMs = 0 }, false},
		{"negative verification window", func(c *Config) { c.Classify.VerificationWindowMs = -1 }, true},
		{"negative evolution window", func(c *Config) { c.Classify.EvolutionWindowMs = -1 }, true},
		{"negative obsolescence window", func(c *Config) { c.Classify.ObsolescenceWindowMs = -1 }, true},
		{"verification not below evolution", func(c *Config) { c.Classify.VerificationWindowMs = c.Classify.EvolutionWindowMs }, true},
		{"evolution not below obsolescence", func(c *Config) { c.Classify.ObsolescenceWindowMs = c.Classify.EvolutionWindowMs }, true},
		{"protocol version with pre-release", func(c *Config) { c.Sync.ProtocolVersion = "1.1.0-beta.1" }, false},
		{"protocol version not semver", func(c *Config) { c.Sync.ProtocolVersion = "one" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_WindowOrderHint(t *testing.T) {
	cfg := Default()
	cfg.Classify.EvolutionWindowMs = cfg.Classify.VerificationWindowMs

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "defaults are")
}

func TestConfig_ClassifierOptions(t *testing.T) {
	cfg := Default()
	cfg.Classify.ReviewThreshold = 0.6
	cfg.Classify.Workers = 3

	opts := cfg.ClassifierOptions()
	assert.Equal(t, cfg.TemporalConfig(), opts.Config)
	require.NotNil(t, opts.ReviewThreshold)
	assert.Equal(t, 0.6, *opts.ReviewThreshold)

	// A configured 0 reaches the classifier instead of falling back to the default
	cfg.Classify.ReviewThreshold = 0
	opts = cfg.ClassifierOptions()
	require.NotNil(t, opts.ReviewThreshold)
	assert.Zero(t, *opts.ReviewThreshold)
	assert.Equal(t, 3, opts.Workers)
	assert.Contains(t, cfg.String(), "Threshold: 0.60")
}
