package config

import (
	"path/filepath"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/genesis"
)

// Config represents the complete programsd configuration
type Config struct {
	// State storage
	Database DatabaseConfig `toml:"database" mapstructure:"database"`

	// Instruction history
	History HistoryConfig `toml:"history" mapstructure:"history"`

	// Instruction engine
	Engine EngineConfig `toml:"engine" mapstructure:"engine"`

	// Logging
	Log LogConfig `toml:"log" mapstructure:"log"`

	// Native balances created on first start
	Genesis genesis.Config `toml:"genesis" mapstructure:"genesis"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// EngineConfig represents the [engine] section
type EngineConfig struct {
	// ReservePerEntry is locked from the payer for every entry created
	ReservePerEntry uint64 `toml:"reserve_per_entry" mapstructure:"reserve_per_entry"`

	// SkipSignatureVerification accepts unsigned instructions. Test use only.
	SkipSignatureVerification bool `toml:"skip_signature_verification" mapstructure:"skip_signature_verification"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Directory string            `toml:"directory" mapstructure:"directory"`
	File      string            `toml:"file" mapstructure:"file"`
	Size      int               `toml:"size" mapstructure:"size"`
	Count     int               `toml:"count" mapstructure:"count"`
	Console   bool              `toml:"console" mapstructure:"console"`
	Levels    map[string]string `toml:"levels" mapstructure:"levels"`
}

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main string // Path to main config file (programsd.toml); empty for defaults only
	Env  string // Path to a dotenv file; a missing file is ignored
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{
		Main: "programsd.toml",
		Env:  ".env",
	}
}

// ConfigPathsFromDir returns configuration paths for a specific directory
func ConfigPathsFromDir(configDir string) ConfigPaths {
	return ConfigPaths{
		Main: filepath.Join(configDir, "programsd.toml"),
		Env:  filepath.Join(configDir, ".env"),
	}
}

// GetConfigPath returns the path to the main configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
