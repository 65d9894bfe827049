package relationaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LeJamon/goProgramsd/internal/storage/compression"
)

// Dialect carries the SQL differences between drivers
type Dialect struct {
	Name string

	// Schema statements, run in order on open
	Schema []string

	// Placeholder renders the n-th (1-based) bind parameter
	Placeholder func(n int) string
}

const (
	defaultLimit = 200
	maxLimit     = 1000
)

// SQLRepository implements Repository over database/sql
type SQLRepository struct {
	db         *sql.DB
	dialect    Dialect
	compressor compression.Compressor
	timeout    time.Duration
}

// NewSQLRepository wraps db and creates the schema if needed
func NewSQLRepository(ctx context.Context, db *sql.DB, dialect Dialect, compressor compression.Compressor, timeout time.Duration) (*SQLRepository, error) {
	r := &SQLRepository{
		db:         db,
		dialect:    dialect,
		compressor: compressor,
		timeout:    timeout,
	}
	if err := r.initSchema(ctx); err != nil {
		return nil, NewSchemaError("open", "failed to initialize schema", err)
	}
	return r, nil
}

func (r *SQLRepository) initSchema(ctx context.Context) error {
	for _, stmt := range r.dialect.Schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// bind rewrites ? markers into the dialect's placeholders
func (r *SQLRepository) bind(query string) string {
	if r.dialect.Placeholder == nil {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString(r.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Record stores rec and its account index rows in one transaction
func (r *SQLRepository) Record(ctx context.Context, rec *InstructionRecord) error {
	if r.db == nil {
		return NewConnectionError("record", "database is closed", nil).WithCode("DATABASE_CLOSED")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	raw, err := r.compressor.Compress(rec.RawTxn)
	if err != nil {
		return NewDataError("record", "failed to compress instruction", err)
	}
	meta, err := r.compressor.Compress(rec.Meta)
	if err != nil {
		return NewDataError("record", "failed to compress metadata", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return NewTransactionError("record", "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.bind(`INSERT INTO instructions
		(hash, sequence, type, account, result, applied, raw_txn, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.Hash[:], int64(rec.Sequence), rec.Type, rec.Account[:], rec.Result, rec.Applied,
		raw, meta, rec.CreatedAt.UnixNano())
	if err != nil {
		return classifyConstraint("record", err)
	}

	seen := map[AccountID]bool{}
	for _, account := range append([]AccountID{rec.Account}, rec.Parties...) {
		if seen[account] {
			continue
		}
		seen[account] = true
		_, err := tx.ExecContext(ctx, r.bind(`INSERT INTO account_instructions (account, sequence, hash) VALUES (?, ?, ?)`),
			account[:], int64(rec.Sequence), rec.Hash[:])
		if err != nil {
			return classifyConstraint("record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return NewTransactionError("record", "failed to commit", err)
	}
	return nil
}

const selectColumns = `i.hash, i.sequence, i.type, i.account, i.result, i.applied, i.raw_txn, i.meta, i.created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *SQLRepository) scanRecord(row scanner) (*InstructionRecord, error) {
	var (
		rec       InstructionRecord
		hash      []byte
		account   []byte
		sequence  int64
		raw, meta []byte
		created   int64
	)
	if err := row.Scan(&hash, &sequence, &rec.Type, &account, &rec.Result, &rec.Applied, &raw, &meta, &created); err != nil {
		return nil, err
	}
	if len(hash) != len(rec.Hash) || len(account) != len(rec.Account) {
		return nil, ErrDataCorruption
	}
	copy(rec.Hash[:], hash)
	copy(rec.Account[:], account)
	rec.Sequence = uint64(sequence)
	rec.CreatedAt = time.Unix(0, created).UTC()

	var err error
	if rec.RawTxn, err = r.compressor.Decompress(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataCorruption, err)
	}
	if rec.Meta, err = r.compressor.Decompress(meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataCorruption, err)
	}
	if len(rec.Meta) == 0 {
		rec.Meta = nil
	}
	return &rec, nil
}

// Get returns the record stored for hash
func (r *SQLRepository) Get(ctx context.Context, hash Hash) (*InstructionRecord, error) {
	if r.db == nil {
		return nil, NewConnectionError("get", "database is closed", nil).WithCode("DATABASE_CLOSED")
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, r.bind(`SELECT `+selectColumns+` FROM instructions i WHERE i.hash = ?`), hash[:])
	rec, err := r.scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewDataError("get", "instruction "+hash.String()+" not found", err).WithCode("INSTRUCTION_NOT_FOUND")
	}
	if err != nil {
		return nil, NewQueryError("get", "failed to query instruction", err)
	}

	rows, err := r.db.QueryContext(ctx, r.bind(`SELECT account FROM account_instructions WHERE hash = ? ORDER BY account`), hash[:])
	if err != nil {
		return nil, NewQueryError("get", "failed to query parties", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, NewQueryError("get", "failed to scan party", err)
		}
		var party AccountID
		copy(party[:], b)
		if party != rec.Account {
			rec.Parties = append(rec.Parties, party)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("get", "failed to read parties", err)
	}
	return rec, nil
}

// ByAccount pages the records concerning account in sequence order
func (r *SQLRepository) ByAccount(ctx context.Context, account AccountID, opts QueryOptions) ([]InstructionRecord, error) {
	if r.db == nil {
		return nil, NewConnectionError("by_account", "database is closed", nil).WithCode("DATABASE_CLOSED")
	}
	limit := opts.Limit
	switch {
	case limit < 0 || limit > maxLimit:
		return nil, ErrInvalidLimit
	case limit == 0:
		limit = defaultLimit
	}

	order := "ASC"
	if opts.Descending {
		order = "DESC"
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + selectColumns + `
		FROM account_instructions a JOIN instructions i ON i.hash = a.hash
		WHERE a.account = ? AND a.sequence > ?
		ORDER BY a.sequence ` + order + `
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, r.bind(query), account[:], int64(opts.AfterSequence), limit)
	if err != nil {
		return nil, NewQueryError("by_account", "failed to query account history", err)
	}
	defer rows.Close()

	var records []InstructionRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, NewQueryError("by_account", "failed to scan instruction", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("by_account", "failed to read account history", err)
	}
	return records, nil
}

// Count returns the number of recorded instructions
func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, NewConnectionError("count", "database is closed", nil).WithCode("DATABASE_CLOSED")
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM instructions`).Scan(&count); err != nil {
		return 0, NewQueryError("count", "failed to count instructions", err)
	}
	return count, nil
}

// LastSequence returns the highest recorded sequence
func (r *SQLRepository) LastSequence(ctx context.Context) (uint64, error) {
	if r.db == nil {
		return 0, NewConnectionError("last_sequence", "database is closed", nil).WithCode("DATABASE_CLOSED")
	}
	var seq sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(sequence) FROM instructions`).Scan(&seq); err != nil {
		return 0, NewQueryError("last_sequence", "failed to query max sequence", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}

// Close closes the database connection
func (r *SQLRepository) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	if err != nil {
		return NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}

var _ Repository = (*SQLRepository)(nil)
