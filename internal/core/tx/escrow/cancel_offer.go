package escrow

import (
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCancelOffer, func() tx.Transaction {
		return &CancelOffer{BaseTx: *tx.NewBaseTx(tx.TypeCancelOffer, "")}
	})
}

// CancelOffer returns the vault to the maker and closes the offer. Only the
// maker may sign it.
type CancelOffer struct {
	tx.BaseTx
	offerRef
}

// NewCancelOffer creates a new CancelOffer instruction
func NewCancelOffer(account, maker string, offerID uint64, mintA, mintB string) *CancelOffer {
	return &CancelOffer{
		BaseTx: *tx.NewBaseTx(tx.TypeCancelOffer, account),
		offerRef: offerRef{
			Maker:      maker,
			OfferID:    offerID,
			TokenMintA: mintA,
			TokenMintB: mintB,
		},
	}
}

// TxType returns the instruction type
func (c *CancelOffer) TxType() tx.Type {
	return tx.TypeCancelOffer
}

// Validate validates the CancelOffer instruction
func (c *CancelOffer) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	return c.offerRef.validate()
}

// Flatten returns a flat map of all instruction fields
func (c *CancelOffer) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(c)
}

// Accounts declares the offer, its vault and the maker's accounts
func (c *CancelOffer) Accounts() ([]tx.AccountMeta, error) {
	signer, err := c.AccountID()
	if err != nil {
		return nil, err
	}
	maker, mintA, mintB, offer, err := c.decode()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.ReadOnly(keylet.System(signer)),
		tx.Writable(keylet.System(maker)),
		tx.ReadOnly(keylet.Mint(mintA)),
		tx.ReadOnly(keylet.Mint(mintB)),
		tx.Writable(keylet.TokenAccount(mintA, maker)),
		tx.Writable(offer),
		tx.Writable(keylet.Vault(offer, mintA)),
	}, nil
}

// Apply applies a CancelOffer instruction
func (c *CancelOffer) Apply(ctx *tx.ApplyContext) tx.Result {
	maker, mintA, mintB, offerKey, err := c.decode()
	if err != nil {
		return tx.TemINVALID_ACCOUNT_ID
	}

	offer, result := readOffer(ctx, offerKey, mintA, mintB)
	if result != tx.TesSUCCESS {
		return result
	}
	if ctx.Signer != offer.Maker || ctx.Signer != maker {
		return tx.TecUNAUTHORIZED
	}

	if result := ctx.EnsureTokenAccount(mintA, maker, maker); result != tx.TesSUCCESS {
		return result
	}
	result = closeOffer(ctx, offerKey, offer, keylet.TokenAccount(mintA, maker))
	if result == tx.TesSUCCESS {
		ctx.Debugf("offer %d by %s cancelled", offer.ID, c.Maker)
	}
	return result
}
