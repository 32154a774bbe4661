// Package config loads otc settings from config.yaml in the user config
// directory, with OTC_* environment variables and command flags on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "OTC"

	KeyBlueprintDir = "blueprint_dir"
	KeyUseHashes    = "use_hashes"
	KeyLogLevel     = "log_level"

	defaultBlueprintDir = "blueprints"
	defaultLogLevel     = "info"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# otc configuration

# Directory scanned for component templates (*.xml)
blueprint_dir: blueprints

# Write per-record and stream hashes when saving, and verify them on load
use_hashes: true

# debug, info, warn or error
log_level: info
`

// Config is the resolved configuration
type Config struct {
	BlueprintDir string
	UseHashes    bool
	LogLevel     log.Level
}

// DefaultDir returns the otc directory under the user config directory
// ($XDG_CONFIG_HOME/otc on Linux).
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(base, "otc"), nil
}

// Load reads config.yaml from configDir, creating the directory and a default
// file on first run. A missing config.yaml is not an error.
func Load(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("config: ensure default file: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyBlueprintDir, defaultBlueprintDir)
	v.SetDefault(KeyUseHashes, true)
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return v, nil
}

// Resolve reads the typed configuration out of v
func Resolve(v *viper.Viper) (Config, error) {
	level, err := log.ParseLevel(strings.ToLower(v.GetString(KeyLogLevel)))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeyLogLevel, err)
	}

	return Config{
		BlueprintDir: v.GetString(KeyBlueprintDir),
		UseHashes:    v.GetBool(KeyUseHashes),
		LogLevel:     level,
	}, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
