package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/genesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func address(b byte) string {
	var id addresscodec.AccountID
	for i := range id {
		id[i] = b
	}
	return id.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	mainConfigContent := `
[database]
type = "leveldb"
path = "/tmp/test/state"
cache_size = 32

[history]
driver = "postgres"
dsn = "postgres://localhost/programs"
compression = "none"
default_timeout = "3s"

[engine]
reserve_per_entry = 5000

[log]
directory = "/tmp/test/log"
console = true

[log.levels]
engine = "debug"

[[genesis.allocations]]
account = "` + address(1) + `"
lamports = 1000000

[[genesis.allocations]]
account = "` + address(2) + `"
lamports = 2000000
`
	mainConfigPath := writeFile(t, tempDir, "programsd.toml", mainConfigContent)

	config, err := LoadConfig(ConfigPaths{Main: mainConfigPath})
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, mainConfigPath, config.GetConfigPath())

	assert.Equal(t, "leveldb", config.Database.Type)
	assert.Equal(t, "/tmp/test/state", config.Database.Path)
	assert.Equal(t, 32, config.Database.CacheSize)

	assert.Equal(t, "postgres", config.History.Driver)
	assert.Equal(t, "postgres://localhost/programs", config.History.DSN)
	assert.Equal(t, "none", config.History.Compression)
	assert.Equal(t, 3*time.Second, config.History.DefaultTimeout)
	assert.Equal(t, 4, config.History.MaxOpenConns)

	assert.Equal(t, uint64(5000), config.Engine.ReservePerEntry)
	assert.False(t, config.Engine.SkipSignatureVerification)

	assert.Equal(t, "/tmp/test/log", config.Log.Directory)
	assert.True(t, config.Log.Console)
	assert.Equal(t, "debug", config.Log.Levels["engine"])

	require.Len(t, config.Genesis.Allocations, 2)
	assert.Equal(t, genesis.Allocation{Account: address(1), Lamports: 1000000}, config.Genesis.Allocations[0])
	assert.Equal(t, uint64(2000000), config.Genesis.Allocations[1].Lamports)
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)

	assert.Equal(t, "pebble", config.Database.Type)
	assert.Equal(t, "sqlite", config.History.Driver)
	assert.Equal(t, "lz4", config.History.Compression)
	assert.Equal(t, 10*time.Second, config.History.DefaultTimeout)
	assert.Equal(t, uint64(1_000_000), config.Engine.ReservePerEntry)
	assert.Equal(t, "programsd.log", config.Log.File)
	assert.Empty(t, config.Genesis.Allocations)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	mainConfigPath := writeFile(t, tempDir, "programsd.toml", `
[database]
type = "pebble"
path = "/tmp/test/state"
`)

	t.Setenv("PROGRAMSD_DATABASE_TYPE", "bbolt")
	t.Setenv("PROGRAMSD_ENGINE_SKIP_SIGNATURE_VERIFICATION", "true")
	t.Setenv("PROGRAMSD_HISTORY_DRIVER", "none")

	config, err := LoadConfig(ConfigPaths{Main: mainConfigPath})
	require.NoError(t, err)

	assert.Equal(t, "bbolt", config.Database.Type)
	assert.Equal(t, "/tmp/test/state", config.Database.Path)
	assert.True(t, config.Engine.SkipSignatureVerification)
	assert.Equal(t, "none", config.History.Driver)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	tempDir := t.TempDir()
	envPath := writeFile(t, tempDir, ".env", "PROGRAMSD_DATABASE_TYPE=memory\n")
	t.Cleanup(func() { os.Unsetenv("PROGRAMSD_DATABASE_TYPE") })

	config, err := LoadConfig(ConfigPaths{Env: envPath})
	require.NoError(t, err)
	assert.Equal(t, "memory", config.Database.Type)
}

func TestLoadConfig_MissingFiles(t *testing.T) {
	tempDir := t.TempDir()

	_, err := LoadConfig(ConfigPaths{Main: filepath.Join(tempDir, "missing.toml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	// A missing dotenv file is not an error.
	_, err = LoadConfig(ConfigPaths{Env: filepath.Join(tempDir, ".env")})
	require.NoError(t, err)
}

func TestLoadConfigFromDir(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, tempDir, "programsd.toml", `
[database]
type = "memory"
`)

	config, err := LoadConfigFromDir(tempDir)
	require.NoError(t, err)
	assert.Equal(t, "memory", config.Database.Type)
}

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Type: "pebble", Path: "/tmp/state", CacheSize: 8},
		History: HistoryConfig{
			Driver:         "sqlite",
			Path:           "/tmp/history.db",
			Compression:    "lz4",
			MaxOpenConns:   1,
			DefaultTimeout: time.Second,
		},
		Log: LogConfig{
			Directory: "/tmp/log",
			File:      "test.log",
			Size:      1024,
			Count:     1,
			Levels:    map[string]string{"*": "info"},
		},
	}
}

func TestConfigValidation(t *testing.T) {
	require.NoError(t, ValidateConfig(validConfig()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Database.Type = "rocksdb" },
			errMsg: "invalid database type",
		},
		{
			name:   "missing path",
			mutate: func(c *Config) { c.Database.Path = "" },
			errMsg: "database path is required",
		},
		{
			name:   "negative cache",
			mutate: func(c *Config) { c.Database.CacheSize = -1 },
			errMsg: "cache_size must be non-negative",
		},
		{
			name:   "unknown history driver",
			mutate: func(c *Config) { c.History.Driver = "mysql" },
			errMsg: "history validation failed",
		},
		{
			name:   "unknown compression",
			mutate: func(c *Config) { c.History.Compression = "zstd" },
			errMsg: "history validation failed",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Log.Levels["engine"] = "loud" },
			errMsg: "invalid log level",
		},
		{
			name:   "zero log size",
			mutate: func(c *Config) { c.Log.Size = 0 },
			errMsg: "log size must be positive",
		},
		{
			name: "bad genesis address",
			mutate: func(c *Config) {
				c.Genesis.Allocations = []genesis.Allocation{{Account: "not-an-address", Lamports: 1}}
			},
			errMsg: "genesis validation failed",
		},
		{
			name: "duplicate genesis account",
			mutate: func(c *Config) {
				c.Genesis.Allocations = []genesis.Allocation{
					{Account: address(1), Lamports: 1},
					{Account: address(1), Lamports: 2},
				}
			},
			errMsg: "genesis validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)
			err := ValidateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	config := validConfig()
	config.Database = DatabaseConfig{Type: "memory"}
	require.NoError(t, ValidateConfig(config))
}

func TestSaveExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.toml")
	require.NoError(t, SaveExampleConfig(path))

	config, err := LoadConfig(ConfigPaths{Main: path})
	require.NoError(t, err)
	assert.Equal(t, "pebble", config.Database.Type)
	assert.Equal(t, "/var/lib/programsd/state", config.Database.Path)
}
