package relationaldb

import (
	"context"
	"encoding/hex"
	"strings"
	"time"
)

// Hash identifies an instruction
type Hash [32]byte

// String renders the hash as upper-case hex
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// AccountID is a 32-byte identity
type AccountID [32]byte

// InstructionRecord is one submitted instruction and its outcome
type InstructionRecord struct {
	Hash      Hash      `json:"hash"`
	Sequence  uint64    `json:"sequence"`
	Type      string    `json:"type"`
	Account   AccountID `json:"account"`
	Result    string    `json:"result"`
	Applied   bool      `json:"applied"`
	RawTxn    []byte    `json:"raw_txn"`
	Meta      []byte    `json:"meta,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Parties lists every identity the instruction concerns besides Account
	Parties []AccountID `json:"parties,omitempty"`
}

// QueryOptions pages account history
type QueryOptions struct {
	// AfterSequence skips records at or below this sequence
	AfterSequence uint64
	Limit         int
	Descending    bool
}

//go:generate mockgen -source=interface.go -destination=mock_relationaldb/mock_repository.go

// Repository stores instruction history
type Repository interface {
	// Record stores rec. Recording the same hash twice fails with ErrDuplicateEntry.
	Record(ctx context.Context, rec *InstructionRecord) error

	// Get returns the record for hash or ErrInstructionNotFound
	Get(ctx context.Context, hash Hash) (*InstructionRecord, error)

	// ByAccount returns records signed by or concerning account
	ByAccount(ctx context.Context, account AccountID, opts QueryOptions) ([]InstructionRecord, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int64, error)

	// LastSequence returns the highest recorded sequence, zero when empty
	LastSequence(ctx context.Context) (uint64, error)

	Close() error
}
