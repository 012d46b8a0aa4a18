package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/qntx-core/errors"
)

// EnvFileVar names the variable that points at an alternative .env file.
const EnvFileVar = "QNTX_ENV_FILE"

var (
	globalConfig  *Config
	viperInstance *viper.Viper

	// systemConfigPath is the lowest-precedence config file
	systemConfigPath = "/etc/qntx/config.toml"
)

// Load reads the qntx configuration using Viper. The result is cached until Reset.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path, over the
// defaults but without environment variables
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = make(map[string]SourceInfo)
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	loadDotEnv()

	v := viper.New()

	// QNTX_CLASSIFY_REVIEW_THRESHOLD overrides classify.review_threshold
	v.SetEnvPrefix("QNTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Precedence (lowest to highest): system < user < project < env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// loadDotEnv loads QNTX_* variables from .env (or $QNTX_ENV_FILE) and its
// .secret sidecar. Variables already set in the process win; missing files
// are ignored.
func loadDotEnv() {
	envFile := os.Getenv(EnvFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")
}

// UserConfigPath returns ~/.qntx/am.toml
func UserConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".qntx", "am.toml")
	}
	return filepath.Join(homeDir, ".qntx", "am.toml")
}

// findProjectConfig walks up from the working directory to the nearest am.toml.
// Returns an empty string if none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		amPath := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles deep-merges every existing config file into v's config
// layer, so a later file overrides single settings rather than whole sections
// and environment variables still win over all of them.
func mergeConfigFiles(v *viper.Viper) {
	type layer struct {
		path   string
		source ConfigSource
	}
	layers := []layer{
		{systemConfigPath, SourceSystem},
		{UserConfigPath(), SourceUser},
	}
	if project := findProjectConfig(); project != "" && project != UserConfigPath() {
		layers = append(layers, layer{project, SourceProject})
	}

	for _, l := range layers {
		if _, err := os.Stat(l.path); err != nil {
			continue
		}

		fileViper := viper.New()
		fileViper.SetConfigFile(l.path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			continue
		}

		if err := v.MergeConfigMap(fileViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range fileViper.AllKeys() {
			ConfigSources[key] = SourceInfo{Source: l.source, Path: l.path}
		}
		v.SetConfigFile(l.path)
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return initViper().Get(key)
}

// Lookup returns a configuration value and whether the key is known
func Lookup(key string) (interface{}, bool) {
	v := initViper()
	if !v.IsSet(key) {
		return nil, false
	}
	return v.Get(key), true
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return initViper().GetString(key)
}
