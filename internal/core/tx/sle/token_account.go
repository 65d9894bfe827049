package sle

import (
	"errors"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
)

// TokenAccount holds an owner's balance of a single mint. Custody accounts of
// escrow offers are token accounts whose owner is the offer key.
type TokenAccount struct {
	Mint    [32]byte `codec:"mint"`
	Owner   [32]byte `codec:"owner"`
	Amount  uint64   `codec:"amount"`
	Reserve uint64   `codec:"reserve"`
}

func (a *TokenAccount) Type() entry.Type {
	return entry.TypeTokenAccount
}

func (a *TokenAccount) Validate() error {
	if a.Mint == [32]byte{} {
		return errors.New("mint is required")
	}
	if a.Owner == [32]byte{} {
		return errors.New("owner is required")
	}
	return nil
}

// ParseTokenAccount parses a TokenAccount entry from serialized data
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	a := &TokenAccount{}
	if err := Decode(data, a); err != nil {
		return nil, err
	}
	return a, nil
}
