package favorites

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeUpdateFavorites, func() tx.Transaction {
		return &UpdateFavorites{BaseTx: *tx.NewBaseTx(tx.TypeUpdateFavorites, "")}
	})
}

// UpdateFavorites changes Owner's current-schema record. The signer must be
// the record's authority. A nil field leaves the stored value unchanged.
type UpdateFavorites struct {
	tx.BaseTx

	// Owner addresses the record. Defaults to the signer.
	Owner string `json:"Owner,omitempty"`

	Number *uint64 `json:"Number,omitempty"`
	Color  *string `json:"Color,omitempty"`
}

// NewUpdateFavorites creates a new UpdateFavorites instruction
func NewUpdateFavorites(account, owner string, number *uint64, color *string) *UpdateFavorites {
	return &UpdateFavorites{
		BaseTx: *tx.NewBaseTx(tx.TypeUpdateFavorites, account),
		Owner:  owner,
		Number: number,
		Color:  color,
	}
}

// TxType returns the instruction type
func (u *UpdateFavorites) TxType() tx.Type {
	return tx.TypeUpdateFavorites
}

// Validate validates the UpdateFavorites instruction
func (u *UpdateFavorites) Validate() error {
	if err := u.BaseTx.Validate(); err != nil {
		return err
	}
	if u.Owner != "" && !addresscodec.IsValidAddress(u.Owner) {
		return errors.New("temINVALID_ACCOUNT_ID: Owner is not a valid address")
	}
	if u.Color != nil {
		return validateColor(*u.Color)
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (u *UpdateFavorites) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(u)
}

func (u *UpdateFavorites) owner() ([32]byte, error) {
	if u.Owner == "" {
		return u.AccountID()
	}
	return addresscodec.Decode(u.Owner)
}

// Accounts declares the record being updated
func (u *UpdateFavorites) Accounts() ([]tx.AccountMeta, error) {
	owner, err := u.owner()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.Favorites(owner)),
	}, nil
}

// Apply applies an UpdateFavorites instruction
func (u *UpdateFavorites) Apply(ctx *tx.ApplyContext) tx.Result {
	owner, err := u.owner()
	if err != nil {
		return tx.TemINVALID_ACCOUNT_ID
	}
	return updateCurrent(ctx, keylet.Favorites(owner), u.Number, u.Color)
}

// updateCurrent applies a partial update to the current-schema record at k
// on behalf of ctx.Signer.
func updateCurrent(ctx *tx.ApplyContext, k keylet.Keylet, number *uint64, color *string) tx.Result {
	rec := &sle.Favorites{}
	if result := ctx.ReadEntry(k, rec); result != tx.TesSUCCESS {
		return result
	}
	if rec.Authority != ctx.Signer {
		return tx.TecUNAUTHORIZED
	}

	if number != nil {
		rec.Number = *number
	}
	if color != nil {
		rec.Color = *color
	}

	if result := ctx.UpdateEntry(k, rec); result != tx.TesSUCCESS {
		return result
	}
	ctx.Debugf("favorites of %s now number %d color %q", sle.EncodeAccountID(rec.Owner), rec.Number, rec.Color)
	return tx.TesSUCCESS
}

// updateV1 applies a partial update to the legacy record at k. Legacy records
// carry no authority, so only the owner may change them.
func updateV1(ctx *tx.ApplyContext, k keylet.Keylet, number *uint64, color *string) tx.Result {
	rec := &sle.FavoritesV1{}
	if result := ctx.ReadEntry(k, rec); result != tx.TesSUCCESS {
		return result
	}
	if rec.Owner != ctx.Signer {
		return tx.TecUNAUTHORIZED
	}

	if number != nil {
		rec.Number = *number
	}
	if color != nil {
		rec.Color = *color
	}

	if result := ctx.UpdateEntry(k, rec); result != tx.TesSUCCESS {
		return result
	}
	ctx.Debugf("v1 favorites of %s now number %d color %q", sle.EncodeAccountID(rec.Owner), rec.Number, rec.Color)
	return tx.TesSUCCESS
}
