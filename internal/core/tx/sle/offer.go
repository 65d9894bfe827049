package sle

import (
	"errors"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
)

// Offer is a live escrow: TokenAOfferedAmount of TokenMintA sits in the
// offer's custody account until someone pays TokenBWantedAmount of TokenMintB.
type Offer struct {
	ID                  uint64   `codec:"id"`
	Maker               [32]byte `codec:"maker"`
	TokenMintA          [32]byte `codec:"token_mint_a"`
	TokenMintB          [32]byte `codec:"token_mint_b"`
	TokenAOfferedAmount uint64   `codec:"token_a_offered_amount"`
	TokenBWantedAmount  uint64   `codec:"token_b_wanted_amount"`
	Reserve             uint64   `codec:"reserve"`
}

func (o *Offer) Type() entry.Type {
	return entry.TypeOffer
}

func (o *Offer) Validate() error {
	if o.Maker == [32]byte{} {
		return errors.New("maker is required")
	}
	if o.TokenMintA == o.TokenMintB {
		return errors.New("offered and wanted mints must differ")
	}
	if o.TokenAOfferedAmount == 0 || o.TokenBWantedAmount == 0 {
		return errors.New("amounts must be positive")
	}
	return nil
}

// ParseOffer parses an Offer entry from serialized data
func ParseOffer(data []byte) (*Offer, error) {
	o := &Offer{}
	if err := Decode(data, o); err != nil {
		return nil, err
	}
	return o, nil
}
