package favorites

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeSetAuthority, func() tx.Transaction {
		return &SetAuthority{BaseTx: *tx.NewBaseTx(tx.TypeSetAuthority, "")}
	})
}

// SetAuthority replaces the authority of the signer's record. Only the owner
// may sign it, whoever the current authority is. A nil NewAuthority hands
// the record back to the owner.
type SetAuthority struct {
	tx.BaseTx

	NewAuthority *string `json:"NewAuthority,omitempty"`
}

// NewSetAuthority creates a new SetAuthority instruction
func NewSetAuthority(account string, newAuthority *string) *SetAuthority {
	return &SetAuthority{
		BaseTx:       *tx.NewBaseTx(tx.TypeSetAuthority, account),
		NewAuthority: newAuthority,
	}
}

// TxType returns the instruction type
func (s *SetAuthority) TxType() tx.Type {
	return tx.TypeSetAuthority
}

// Validate validates the SetAuthority instruction
func (s *SetAuthority) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if s.NewAuthority != nil && !addresscodec.IsValidAddress(*s.NewAuthority) {
		return errors.New("temINVALID_ACCOUNT_ID: NewAuthority is not a valid address")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (s *SetAuthority) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Accounts declares the owner's record
func (s *SetAuthority) Accounts() ([]tx.AccountMeta, error) {
	owner, err := s.AccountID()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.Favorites(owner)),
	}, nil
}

// Apply applies a SetAuthority instruction
func (s *SetAuthority) Apply(ctx *tx.ApplyContext) tx.Result {
	k := keylet.Favorites(ctx.Signer)

	rec := &sle.Favorites{}
	if result := ctx.ReadEntry(k, rec); result != tx.TesSUCCESS {
		return result
	}
	// The record is derived from the signer, but keep the owner check explicit.
	if rec.Owner != ctx.Signer {
		return tx.TecUNAUTHORIZED
	}

	rec.Authority = rec.Owner
	if s.NewAuthority != nil {
		rec.Authority = addresscodec.MustDecode(*s.NewAuthority)
	}

	if result := ctx.UpdateEntry(k, rec); result != tx.TesSUCCESS {
		return result
	}
	ctx.Debugf("authority of %s's favorites set to %s", s.Account, sle.EncodeAccountID(rec.Authority))
	return tx.TesSUCCESS
}
