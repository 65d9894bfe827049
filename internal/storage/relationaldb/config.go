package relationaldb

import (
	"time"

	"github.com/LeJamon/goProgramsd/internal/storage/compression"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Config contains history database settings
type Config struct {
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Path is the sqlite database file
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// DSN is the postgres connection string
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`

	// Compression names the codec applied to stored instruction blobs
	Compression string `json:"compression" yaml:"compression" mapstructure:"compression"`

	MaxOpenConns   int           `json:"max_open_conns" yaml:"max_open_conns" mapstructure:"max_open_conns"`
	DefaultTimeout time.Duration `json:"default_timeout" yaml:"default_timeout" mapstructure:"default_timeout"`
}

// NewConfig creates a new Config with sensible defaults
func NewConfig() *Config {
	return &Config{
		Driver:         DriverSQLite,
		Path:           "history.db",
		Compression:    "lz4",
		MaxOpenConns:   4,
		DefaultTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration for the selected driver
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return ErrMissingPath
		}
	case DriverPostgres:
		if c.DSN == "" {
			return ErrMissingDSN
		}
	case DriverNone:
		return nil
	default:
		return ErrInvalidDriver
	}

	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if !compression.IsAvailable(c.Compression) {
		return ErrInvalidCompression
	}
	return nil
}
