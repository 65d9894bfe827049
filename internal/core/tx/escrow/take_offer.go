package escrow

import (
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeTakeOffer, func() tx.Transaction {
		return &TakeOffer{BaseTx: *tx.NewBaseTx(tx.TypeTakeOffer, "")}
	})
}

// TakeOffer pays the maker the wanted amount and receives the whole vault.
// Missing holding accounts for the taker (mint A) and the maker (mint B) are
// opened at the taker's expense.
type TakeOffer struct {
	tx.BaseTx
	offerRef
}

// NewTakeOffer creates a new TakeOffer instruction
func NewTakeOffer(account, maker string, offerID uint64, mintA, mintB string) *TakeOffer {
	return &TakeOffer{
		BaseTx: *tx.NewBaseTx(tx.TypeTakeOffer, account),
		offerRef: offerRef{
			Maker:      maker,
			OfferID:    offerID,
			TokenMintA: mintA,
			TokenMintB: mintB,
		},
	}
}

// TxType returns the instruction type
func (t *TakeOffer) TxType() tx.Type {
	return tx.TypeTakeOffer
}

// Validate validates the TakeOffer instruction
func (t *TakeOffer) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	return t.offerRef.validate()
}

// Flatten returns a flat map of all instruction fields
func (t *TakeOffer) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(t)
}

// Accounts declares the offer, its vault, both parties' native accounts and
// the four holding accounts the swap moves tokens between.
func (t *TakeOffer) Accounts() ([]tx.AccountMeta, error) {
	taker, err := t.AccountID()
	if err != nil {
		return nil, err
	}
	maker, mintA, mintB, offer, err := t.decode()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.System(taker)),
		tx.Writable(keylet.System(maker)),
		tx.ReadOnly(keylet.Mint(mintA)),
		tx.ReadOnly(keylet.Mint(mintB)),
		tx.Writable(keylet.TokenAccount(mintA, taker)),
		tx.Writable(keylet.TokenAccount(mintB, taker)),
		tx.Writable(keylet.TokenAccount(mintB, maker)),
		tx.Writable(offer),
		tx.Writable(keylet.Vault(offer, mintA)),
	}, nil
}

// Apply applies a TakeOffer instruction
func (t *TakeOffer) Apply(ctx *tx.ApplyContext) tx.Result {
	taker := ctx.Signer
	maker, mintA, mintB, offerKey, err := t.decode()
	if err != nil {
		return tx.TemINVALID_ACCOUNT_ID
	}

	offer, result := readOffer(ctx, offerKey, mintA, mintB)
	if result != tx.TesSUCCESS {
		return result
	}

	payment := keylet.TokenAccount(mintB, taker)
	holding, result := ctx.ReadTokenAccount(payment)
	if result == tx.TecNO_ENTRY {
		return tx.TecINSUFFICIENT_FUNDS
	}
	if result != tx.TesSUCCESS {
		return result
	}
	if holding.Amount < offer.TokenBWantedAmount {
		return tx.TecINSUFFICIENT_FUNDS
	}

	if result := ctx.EnsureTokenAccount(mintA, taker, taker); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.EnsureTokenAccount(mintB, maker, taker); result != tx.TesSUCCESS {
		return result
	}

	if result := ctx.TransferTokens(mintB, payment, keylet.TokenAccount(mintB, maker), offer.TokenBWantedAmount); result != tx.TesSUCCESS {
		return result
	}
	result = closeOffer(ctx, offerKey, offer, keylet.TokenAccount(mintA, taker))
	if result == tx.TesSUCCESS {
		ctx.Debugf("offer %d by %s taken by %s", offer.ID, t.Maker, t.Account)
	}
	return result
}
