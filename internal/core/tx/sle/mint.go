package sle

import (
	"errors"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
)

// MaxDecimals bounds the display precision of a mint.
const MaxDecimals = 18

// Mint describes a token type. Only the mint authority may create supply.
type Mint struct {
	Address       [32]byte `codec:"address"`
	MintAuthority [32]byte `codec:"mint_authority"`
	Supply        uint64   `codec:"supply"`
	Decimals      uint8    `codec:"decimals"`
	Reserve       uint64   `codec:"reserve"`
}

func (m *Mint) Type() entry.Type {
	return entry.TypeMint
}

func (m *Mint) Validate() error {
	if m.Address == [32]byte{} {
		return errors.New("mint address is required")
	}
	if m.MintAuthority == [32]byte{} {
		return errors.New("mint authority is required")
	}
	if m.Decimals > MaxDecimals {
		return errors.New("decimals out of range")
	}
	return nil
}

// ParseMint parses a Mint entry from serialized data
func ParseMint(data []byte) (*Mint, error) {
	m := &Mint{}
	if err := Decode(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
