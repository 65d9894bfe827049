// Package escrow provides builders for escrow offer instructions.
package escrow

import (
	escrowtx "github.com/LeJamon/goProgramsd/internal/core/tx/escrow"
	"github.com/LeJamon/goProgramsd/internal/testing"
)

// MakeOfferBuilder provides a fluent interface for building MakeOffer instructions.
type MakeOfferBuilder struct {
	maker   *testing.Account
	id      uint64
	mintA   *testing.Account
	offered uint64
	mintB   *testing.Account
	wanted  uint64
	memo    string
}

// MakeOffer creates a new MakeOfferBuilder for maker's offer id.
func MakeOffer(maker *testing.Account, id uint64) *MakeOfferBuilder {
	return &MakeOfferBuilder{maker: maker, id: id}
}

// Offering sets the mint and amount locked in the vault.
func (b *MakeOfferBuilder) Offering(mint *testing.Account, amount uint64) *MakeOfferBuilder {
	b.mintA = mint
	b.offered = amount
	return b
}

// Wanting sets the mint and amount the maker asks for.
func (b *MakeOfferBuilder) Wanting(mint *testing.Account, amount uint64) *MakeOfferBuilder {
	b.mintB = mint
	b.wanted = amount
	return b
}

// Memo attaches free text carried into history.
func (b *MakeOfferBuilder) Memo(memo string) *MakeOfferBuilder {
	b.memo = memo
	return b
}

// Build constructs the MakeOffer instruction.
func (b *MakeOfferBuilder) Build() *escrowtx.MakeOffer {
	offer := escrowtx.NewMakeOffer(b.maker.Address, b.id, address(b.mintA), b.offered, address(b.mintB), b.wanted)
	offer.Memo = b.memo
	return offer
}

// OfferRef names a live offer by maker, id and both mints.
type OfferRef struct {
	Maker *testing.Account
	ID    uint64
	MintA *testing.Account
	MintB *testing.Account
}

// Ref returns the reference of the offer the builder creates.
func (b *MakeOfferBuilder) Ref() OfferRef {
	return OfferRef{Maker: b.maker, ID: b.id, MintA: b.mintA, MintB: b.mintB}
}

// Take builds a TakeOffer of ref signed by taker.
func Take(taker *testing.Account, ref OfferRef) *escrowtx.TakeOffer {
	return escrowtx.NewTakeOffer(taker.Address, address(ref.Maker), ref.ID, address(ref.MintA), address(ref.MintB))
}

// Cancel builds a CancelOffer of ref signed by signer.
func Cancel(signer *testing.Account, ref OfferRef) *escrowtx.CancelOffer {
	return escrowtx.NewCancelOffer(signer.Address, address(ref.Maker), ref.ID, address(ref.MintA), address(ref.MintB))
}

func address(acc *testing.Account) string {
	if acc == nil {
		return ""
	}
	return acc.Address
}
