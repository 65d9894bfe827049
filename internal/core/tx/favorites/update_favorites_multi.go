package favorites

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeUpdateFavoritesMultiVersions, func() tx.Transaction {
		return &UpdateFavoritesMultiVersions{BaseTx: *tx.NewBaseTx(tx.TypeUpdateFavoritesMultiVersions, "")}
	})
}

// UpdateFavoritesMultiVersions updates whichever schema version the record
// handle points at. The stored discriminator selects the version; the handle
// must be one of Owner's two derived record addresses.
type UpdateFavoritesMultiVersions struct {
	tx.BaseTx

	// Owner of the record. Defaults to the signer.
	Owner string `json:"Owner,omitempty"`

	// Favorites is the record handle (base58 ledger key)
	Favorites string `json:"Favorites"`

	Number *uint64 `json:"Number,omitempty"`
	Color  *string `json:"Color,omitempty"`
}

// NewUpdateFavoritesMultiVersions creates a new UpdateFavoritesMultiVersions instruction
func NewUpdateFavoritesMultiVersions(account, owner string, handle [32]byte, number *uint64, color *string) *UpdateFavoritesMultiVersions {
	return &UpdateFavoritesMultiVersions{
		BaseTx:    *tx.NewBaseTx(tx.TypeUpdateFavoritesMultiVersions, account),
		Owner:     owner,
		Favorites: addresscodec.AccountID(handle).String(),
		Number:    number,
		Color:     color,
	}
}

// TxType returns the instruction type
func (u *UpdateFavoritesMultiVersions) TxType() tx.Type {
	return tx.TypeUpdateFavoritesMultiVersions
}

// Validate validates the UpdateFavoritesMultiVersions instruction
func (u *UpdateFavoritesMultiVersions) Validate() error {
	if err := u.BaseTx.Validate(); err != nil {
		return err
	}
	if u.Owner != "" && !addresscodec.IsValidAddress(u.Owner) {
		return errors.New("temINVALID_ACCOUNT_ID: Owner is not a valid address")
	}
	if !addresscodec.IsValidAddress(u.Favorites) {
		return errors.New("temINVALID_ACCOUNT_ID: Favorites is not a valid record handle")
	}
	if u.Color != nil {
		return validateColor(*u.Color)
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (u *UpdateFavoritesMultiVersions) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(u)
}

func (u *UpdateFavoritesMultiVersions) owner() ([32]byte, error) {
	if u.Owner == "" {
		return u.AccountID()
	}
	return addresscodec.Decode(u.Owner)
}

// Accounts declares the record handle
func (u *UpdateFavoritesMultiVersions) Accounts() ([]tx.AccountMeta, error) {
	handle, err := addresscodec.Decode(u.Favorites)
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.Unchecked(handle)),
	}, nil
}

// Apply applies an UpdateFavoritesMultiVersions instruction
func (u *UpdateFavoritesMultiVersions) Apply(ctx *tx.ApplyContext) tx.Result {
	owner, err := u.owner()
	if err != nil {
		return tx.TemINVALID_ACCOUNT_ID
	}
	handle := keylet.Unchecked(addresscodec.MustDecode(u.Favorites))

	current, legacy := keylet.Favorites(owner), keylet.FavoritesV1(owner)
	if handle.Key != current.Key && handle.Key != legacy.Key {
		return tx.TecINVALID_ACCOUNT
	}

	data, err := ctx.View.Read(handle)
	if err != nil {
		return tx.TefINTERNAL
	}
	if data == nil {
		return tx.TecNO_ENTRY
	}

	version, err := sle.PeekType(data)
	if err != nil {
		return tx.TecUNKNOWN_VERSION
	}

	switch {
	case version == entry.TypeFavorites && handle.Key == current.Key:
		return updateCurrent(ctx, current, u.Number, u.Color)
	case version == entry.TypeFavoritesV1 && handle.Key == legacy.Key:
		return updateV1(ctx, legacy, u.Number, u.Color)
	case version == entry.TypeFavorites || version == entry.TypeFavoritesV1:
		return tx.TecINVALID_ACCOUNT
	default:
		return tx.TecUNKNOWN_VERSION
	}
}
