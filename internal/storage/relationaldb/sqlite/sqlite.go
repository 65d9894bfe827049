// Package sqlite stores instruction history in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver, registers "sqlite"

	"github.com/LeJamon/goProgramsd/internal/storage/compression"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

// Dialect is the SQLite flavour of the history schema
var Dialect = relationaldb.Dialect{
	Name: relationaldb.DriverSQLite,
	Schema: []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS instructions (
			hash       BLOB PRIMARY KEY,
			sequence   INTEGER NOT NULL,
			type       TEXT NOT NULL,
			account    BLOB NOT NULL,
			result     TEXT NOT NULL,
			applied    BOOLEAN NOT NULL,
			raw_txn    BLOB NOT NULL,
			meta       BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS instructions_sequence ON instructions (sequence)`,
		`CREATE TABLE IF NOT EXISTS account_instructions (
			account  BLOB NOT NULL,
			sequence INTEGER NOT NULL,
			hash     BLOB NOT NULL,
			PRIMARY KEY (account, hash)
		)`,
		`CREATE INDEX IF NOT EXISTS account_instructions_seq ON account_instructions (account, sequence)`,
	},
}

// Open opens (creating if needed) the history database at cfg.Path
func Open(ctx context.Context, cfg *relationaldb.Config) (*relationaldb.SQLRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("open", "invalid configuration", err)
	}
	compressor, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, relationaldb.NewConfigurationError("open", "invalid compression", err)
	}

	db, err := sql.Open(relationaldb.DriverSQLite, cfg.Path)
	if err != nil {
		return nil, relationaldb.NewConnectionError("open", "failed to open database", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
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
