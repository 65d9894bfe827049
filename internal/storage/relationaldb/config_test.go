package relationaldb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "none driver", modify: func(c *Config) { c.Driver = DriverNone; c.Path = "" }},
		{name: "unknown driver", modify: func(c *Config) { c.Driver = "mysql" }, want: ErrInvalidDriver},
		{name: "sqlite without path", modify: func(c *Config) { c.Path = "" }, want: ErrMissingPath},
		{name: "postgres without dsn", modify: func(c *Config) { c.Driver = DriverPostgres }, want: ErrMissingDSN},
		{name: "negative conns", modify: func(c *Config) { c.MaxOpenConns = -1 }, want: ErrInvalidMaxOpenConns},
		{name: "zero timeout", modify: func(c *Config) { c.DefaultTimeout = 0 }, want: ErrInvalidTimeout},
		{name: "unknown compression", modify: func(c *Config) { c.Compression = "zstd" }, want: ErrInvalidCompression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestDatabaseErrorMatching(t *testing.T) {
	err := NewDataError("get", "missing", nil).WithCode("INSTRUCTION_NOT_FOUND")
	assert.ErrorIs(t, err, ErrInstructionNotFound)
	assert.False(t, errors.Is(err, ErrDuplicateEntry))

	dup := classifyConstraint("record", errors.New("UNIQUE constraint failed: instructions.hash"))
	assert.ErrorIs(t, dup, ErrDuplicateEntry)

	other := classifyConstraint("record", errors.New("syntax error"))
	assert.True(t, IsQueryError(other))

	assert.True(t, IsRetryable(NewConnectionError("open", "refused", nil)))
	assert.True(t, IsRetryable(errors.New("database is locked")))
	assert.False(t, IsRetryable(errors.New("no such table")))
}
