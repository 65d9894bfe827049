// Package postgres stores instruction history in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"strconv"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/LeJamon/goProgramsd/internal/storage/compression"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

// Dialect is the PostgreSQL flavour of the history schema
var Dialect = relationaldb.Dialect{
	Name: relationaldb.DriverPostgres,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS instructions (
			hash       BYTEA PRIMARY KEY,
			sequence   BIGINT NOT NULL,
			type       TEXT NOT NULL,
			account    BYTEA NOT NULL,
			result     TEXT NOT NULL,
			applied    BOOLEAN NOT NULL,
			raw_txn    BYTEA NOT NULL,
			meta       BYTEA NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS instructions_sequence ON instructions (sequence)`,
		`CREATE TABLE IF NOT EXISTS account_instructions (
			account  BYTEA NOT NULL,
			sequence BIGINT NOT NULL,
			hash     BYTEA NOT NULL REFERENCES instructions (hash),
			PRIMARY KEY (account, hash)
		)`,
		`CREATE INDEX IF NOT EXISTS account_instructions_seq ON account_instructions (account, sequence)`,
	},
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
}

// Open connects to cfg.DSN and prepares the schema
func Open(ctx context.Context, cfg *relationaldb.Config) (*relationaldb.SQLRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("open", "invalid configuration", err)
	}
	compressor, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, relationaldb.NewConfigurationError("open", "invalid compression", err)
	}

	db, err := sql.Open(relationaldb.DriverPostgres, cfg.DSN)
	if err != nil {
		return nil, relationaldb.NewConnectionError("open", "failed to open database connection", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, relationaldb.NewConnectionError("open", "failed to ping database", err)
	}

	repo, err := relationaldb.NewSQLRepository(ctx, db, Dialect, compressor, cfg.DefaultTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
