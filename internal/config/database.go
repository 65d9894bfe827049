package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/LeJamon/goProgramsd/internal/storage/database/open"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

// DatabaseConfig represents the [database] section
// Configures the persistent store holding ledger entries
type DatabaseConfig struct {
	Type string `toml:"type" mapstructure:"type"`
	Path string `toml:"path" mapstructure:"path"`

	// CacheSize is the backend block cache in megabytes
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`

	// CacheEntries bounds the decoded entry cache in front of the backend
	CacheEntries int `toml:"cache_entries" mapstructure:"cache_entries"`
}

// HistoryConfig represents the [history] section
type HistoryConfig struct {
	Driver         string        `toml:"driver" mapstructure:"driver"`
	Path           string        `toml:"path" mapstructure:"path"`
	DSN            string        `toml:"dsn" mapstructure:"dsn"`
	Compression    string        `toml:"compression" mapstructure:"compression"`
	MaxOpenConns   int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	DefaultTimeout time.Duration `toml:"default_timeout" mapstructure:"default_timeout"`
}

// Validate performs validation on the database configuration
func (d *DatabaseConfig) Validate() error {
	if !slices.Contains(open.Backends, d.Type) {
		return fmt.Errorf("invalid database type: %s (valid options: %v)", d.Type, open.Backends)
	}
	if d.Type != open.BackendMemory && d.Path == "" {
		return fmt.Errorf("database path is required for %s", d.Type)
	}
	if d.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", d.CacheSize)
	}
	if d.CacheEntries < 0 {
		return fmt.Errorf("cache_entries must be non-negative, got %d", d.CacheEntries)
	}
	return nil
}

// Relational converts the section into history repository settings.
func (h *HistoryConfig) Relational() *relationaldb.Config {
	return &relationaldb.Config{
		Driver:         h.Driver,
		Path:           h.Path,
		DSN:            h.DSN,
		Compression:    h.Compression,
		MaxOpenConns:   h.MaxOpenConns,
		DefaultTimeout: h.DefaultTimeout,
	}
}

// Validate performs validation on the history configuration
func (h *HistoryConfig) Validate() error {
	return h.Relational().Validate()
}
