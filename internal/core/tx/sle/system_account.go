package sle

import (
	"errors"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
)

// SystemAccount holds the native lamport balance of an identity. Reserves for
// every entry an identity pays for are drawn from here.
type SystemAccount struct {
	Account  [32]byte `codec:"account"`
	Lamports uint64   `codec:"lamports"`

	// Sequence is the Sequence the next instruction signed by Account must carry
	Sequence uint64 `codec:"sequence"`
}

func (s *SystemAccount) Type() entry.Type {
	return entry.TypeSystemAccount
}

func (s *SystemAccount) Validate() error {
	if s.Account == [32]byte{} {
		return errors.New("account is required")
	}
	return nil
}

// ParseSystemAccount parses a SystemAccount entry from serialized data
func ParseSystemAccount(data []byte) (*SystemAccount, error) {
	s := &SystemAccount{}
	if err := Decode(data, s); err != nil {
		return nil, err
	}
	return s, nil
}
