package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// PROGRAMSD_DATABASE_TYPE for database.type.
const EnvPrefix = "PROGRAMSD"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (programsd.toml)
// 3. Environment variables (PROGRAMSD_ prefix), including a dotenv file
func LoadConfig(paths ConfigPaths) (*Config, error) {
	// Create viper instance for main config
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load main configuration file
	if paths.Main != "" {
		if err := loadMainConfig(v, paths.Main); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	// 3. Set up environment variable support
	if err := loadEnvFile(paths.Env); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal main config into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = paths.Main

	// 5. Validate the complete configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadMainConfig loads the main configuration file
func loadMainConfig(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}

// loadEnvFile exports the variables of a dotenv file that are not already
// set in the environment.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoadConfigFromDir loads configuration from a directory containing both files
func LoadConfigFromDir(configDir string) (*Config, error) {
	return LoadConfig(ConfigPathsFromDir(configDir))
}

// LoadDefaultConfig loads configuration from default locations. A missing
// programsd.toml falls back to defaults and environment only.
func LoadDefaultConfig() (*Config, error) {
	paths := DefaultConfigPaths()
	if _, err := os.Stat(paths.Main); os.IsNotExist(err) {
		paths.Main = ""
	}
	return LoadConfig(paths)
}

// SaveExampleConfig saves an example configuration file
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)

	for key, value := range generateExampleConfig() {
		v.Set(key, value)
	}

	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}

// generateExampleConfig generates example configuration values
func generateExampleConfig() map[string]interface{} {
	return map[string]interface{}{
		"database.type": "pebble",
		"database.path": "/var/lib/programsd/state",

		"history.driver": "sqlite",
		"history.path":   "/var/lib/programsd/history.db",

		"log.directory": "/var/log/programsd",
	}
}
