package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the persisted application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// Defaults returns the default configuration values, keyed the way viper
// expects them.
func Defaults() map[string]any {
	return map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./keywarden.db",
		"debug":         false,
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keywarden")
		default: // Linux, macOS, etc.
			configDir = "/etc/keywarden"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keywarden")
	}

	return filepath.Join(configDir, "keywarden.yaml"), nil
}

// LoadConfig resolves the configuration from defaults, config files,
// environment variables and command-line flags, in ascending precedence.
// When no config file exists anywhere, the returned value still carries
// the resolved defaults and the error is viper.ConfigFileNotFoundError,
// so callers can decide to persist a starter file.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additional_config_file_path *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths (keywarden.yaml)
	v.SetConfigName("keywarden")
	v.SetConfigType("yaml")

	// 3. An explicit config file path provided via --config has the highest
	// precedence for file-based configuration.
	if additional_config_file_path != nil {
		v.SetConfigFile(*additional_config_file_path)
	}

	// 4. Add standard config locations
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for keywarden.yaml in current dir

	// 5. Read in the primary config file. Not finding one is reported to the
	// caller after unmarshaling; anything else is fatal here.
	readErr := v.ReadInConfig()
	if readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			return c, readErr
		}
	}

	// 6. For backward compatibility, merge a `.keywarden.yaml` from the
	// current directory when present. A successful merge counts as a found
	// config file.
	if mergeLegacyConfig(v) {
		readErr = nil
	}

	// 7. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keywarden")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 8. Bind command-line flags
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}
	// The database flags are user-facing names and don't match the nested
	// config keys, so they get explicit bindings.
	if f := cmd.Flags().Lookup("db-type"); f != nil {
		_ = v.BindPFlag("database.type", f)
	}
	if f := cmd.Flags().Lookup("db-dsn"); f != nil {
		_ = v.BindPFlag("database.dsn", f)
	}

	// parse config
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, readErr
}

// mergeLegacyConfig checks for a `.keywarden.yaml` file in the current
// directory and merges it into the viper configuration if found. It reports
// whether a legacy file was merged.
func mergeLegacyConfig(v *viper.Viper) bool {
	legacyConfigFile := ".keywarden.yaml"
	if _, err := os.Stat(legacyConfigFile); err != nil {
		return false
	}
	v.SetConfigFile(legacyConfigFile)
	// MergeInConfig errors on a malformed file; ignore it for this
	// compatibility layer so a broken legacy file cannot block startup.
	if err := v.MergeInConfig(); err != nil {
		v.SetConfigFile("")
		return false
	}
	// Reset the config file path to avoid side effects.
	v.SetConfigFile("")
	return true
}

// WriteConfigFile persists the configuration as YAML at the user or system
// config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600 because the DSN may contain database credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	return nil
}
