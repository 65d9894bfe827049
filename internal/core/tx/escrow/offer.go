// Package escrow implements the token-swap escrow: a maker locks an offered
// amount of one token in a vault owned by the offer, and any taker paying the
// wanted amount of another token receives the vault in a single step.
package escrow

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// offerRef identifies a live offer and the mints the caller expects it to
// trade. Both TakeOffer and CancelOffer address an offer this way.
type offerRef struct {
	// Maker created the offer (required)
	Maker string `json:"Maker"`

	// OfferID is the maker-chosen id (required)
	OfferID uint64 `json:"OfferID"`

	// TokenMintA is the offered token; must match the stored offer
	TokenMintA string `json:"TokenMintA"`

	// TokenMintB is the wanted token; must match the stored offer
	TokenMintB string `json:"TokenMintB"`
}

func (r *offerRef) validate() error {
	if !addresscodec.IsValidAddress(r.Maker) {
		return errors.New("temINVALID_ACCOUNT_ID: Maker is not a valid address")
	}
	if !addresscodec.IsValidAddress(r.TokenMintA) {
		return errors.New("temINVALID_ACCOUNT_ID: TokenMintA is not a valid address")
	}
	if !addresscodec.IsValidAddress(r.TokenMintB) {
		return errors.New("temINVALID_ACCOUNT_ID: TokenMintB is not a valid address")
	}
	if r.TokenMintA == r.TokenMintB {
		return errors.New("temSAME_MINT: TokenMintA and TokenMintB must differ")
	}
	return nil
}

// decode returns the maker, the two mints and the offer keylet.
func (r *offerRef) decode() (maker, mintA, mintB [32]byte, offer keylet.Keylet, err error) {
	if maker, err = addresscodec.Decode(r.Maker); err != nil {
		return
	}
	if mintA, err = addresscodec.Decode(r.TokenMintA); err != nil {
		return
	}
	if mintB, err = addresscodec.Decode(r.TokenMintB); err != nil {
		return
	}
	offer = keylet.Offer(maker, r.OfferID)
	return
}

// readOffer loads the offer at k and checks it trades mintA for mintB.
func readOffer(ctx *tx.ApplyContext, k keylet.Keylet, mintA, mintB [32]byte) (*sle.Offer, tx.Result) {
	offer := &sle.Offer{}
	if result := ctx.ReadEntry(k, offer); result != tx.TesSUCCESS {
		return nil, result
	}
	if offer.TokenMintA != mintA || offer.TokenMintB != mintB {
		return nil, tx.TecMISMATCHED_MINT
	}
	return offer, tx.TesSUCCESS
}

// closeOffer drains the vault to destination, closes the vault and the offer,
// and returns both reserves to the maker.
func closeOffer(ctx *tx.ApplyContext, k keylet.Keylet, offer *sle.Offer, destination keylet.Keylet) tx.Result {
	vaultKey := keylet.Vault(k, offer.TokenMintA)
	vault, result := ctx.ReadTokenAccount(vaultKey)
	if result != tx.TesSUCCESS {
		return result
	}

	if result := ctx.TransferTokens(offer.TokenMintA, vaultKey, destination, vault.Amount); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.CloseTokenAccount(vaultKey, offer.Maker); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.EraseEntry(k); result != tx.TesSUCCESS {
		return result
	}
	return ctx.RefundReserve(offer.Maker, offer.Reserve)
}
