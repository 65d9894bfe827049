package tx

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccount         = errors.New("invalid account")
)

// Transaction is the interface that all instruction types must implement
type Transaction interface {
	// TxType returns the instruction type
	TxType() Type

	// GetCommon returns the common instruction fields
	GetCommon() *Common

	// Validate checks if the instruction is well formed
	Validate() error

	// Flatten returns a flat map of all instruction fields for hashing and storage
	Flatten() (map[string]any, error)

	// Accounts declares every ledger slot the instruction may touch.
	// The engine refuses reads and writes outside this list.
	Accounts() ([]AccountMeta, error)
}

// Appliable is implemented by instruction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// AccountMeta declares one ledger slot used by an instruction.
type AccountMeta struct {
	Keylet   keylet.Keylet
	Writable bool
}

// Writable declares a slot the instruction may create, modify or close.
func Writable(k keylet.Keylet) AccountMeta {
	return AccountMeta{Keylet: k, Writable: true}
}

// ReadOnly declares a slot the instruction only reads.
func ReadOnly(k keylet.Keylet) AccountMeta {
	return AccountMeta{Keylet: k}
}

// Common contains fields common to all instruction types
type Common struct {
	// Account is the signer of the instruction (base58 ed25519 public key)
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`

	// Sequence must equal the signer's account sequence. It is signed, so a
	// signed instruction applies at most once.
	Sequence uint64 `json:"Sequence"`

	// Signature is the hex ed25519 signature over SigningHash
	Signature string `json:"Signature,omitempty"`

	// Memo is free text carried into history
	Memo string `json:"Memo,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account == "" {
		return errors.New("temBAD_SRC_ACCOUNT: Account is required")
	}
	if !addresscodec.IsValidAddress(c.Account) {
		return errors.New("temBAD_SRC_ACCOUNT: Account is not a valid address")
	}
	if c.TransactionType == "" {
		return errors.New("temINVALID: TransactionType is required")
	}
	return nil
}

// AccountID returns the decoded signer identity
func (c *Common) AccountID() ([32]byte, error) {
	id, err := addresscodec.Decode(c.Account)
	if err != nil {
		return [32]byte{}, err
	}
	return id, nil
}

// ToMap converts common fields to a map
func (c *Common) ToMap() map[string]any {
	m := map[string]any{
		"Account":         c.Account,
		"TransactionType": c.TransactionType,
		"Sequence":        c.Sequence,
	}
	if c.Signature != "" {
		m["Signature"] = c.Signature
	}
	if c.Memo != "" {
		m["Memo"] = c.Memo
	}
	return m
}

// BaseTx provides a base implementation for instructions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the instruction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common instruction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base instruction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// Flatten returns a flat map of instruction fields
func (b *BaseTx) Flatten() (map[string]any, error) {
	return b.Common.ToMap(), nil
}

// NewBaseTx creates a new base instruction
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
