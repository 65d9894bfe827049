// Package favorites implements the favorites registry: a per-owner record of a
// favorite number and color, editable only by its current authority.
package favorites

import (
	"errors"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeSetFavorites, func() tx.Transaction {
		return &SetFavorites{BaseTx: *tx.NewBaseTx(tx.TypeSetFavorites, "")}
	})
}

// SetFavorites creates the signer's favorites record. The first write wins;
// later calls fail with tecDUPLICATE.
type SetFavorites struct {
	tx.BaseTx

	Number uint64 `json:"Number"`
	Color  string `json:"Color"`
}

// NewSetFavorites creates a new SetFavorites instruction
func NewSetFavorites(account string, number uint64, color string) *SetFavorites {
	return &SetFavorites{
		BaseTx: *tx.NewBaseTx(tx.TypeSetFavorites, account),
		Number: number,
		Color:  color,
	}
}

// TxType returns the instruction type
func (s *SetFavorites) TxType() tx.Type {
	return tx.TypeSetFavorites
}

// Validate validates the SetFavorites instruction
func (s *SetFavorites) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	return validateColor(s.Color)
}

// Flatten returns a flat map of all instruction fields
func (s *SetFavorites) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Accounts declares the owner's native account and record
func (s *SetFavorites) Accounts() ([]tx.AccountMeta, error) {
	owner, err := s.AccountID()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.System(owner)),
		tx.Writable(keylet.Favorites(owner)),
	}, nil
}

// Apply applies a SetFavorites instruction
func (s *SetFavorites) Apply(ctx *tx.ApplyContext) tx.Result {
	owner := ctx.Signer
	k := keylet.Favorites(owner)

	exists, result := ctx.Exists(k)
	if result != tx.TesSUCCESS {
		return result
	}
	if exists {
		return tx.TecDUPLICATE
	}

	reserve, result := ctx.ChargeReserve(owner)
	if result != tx.TesSUCCESS {
		return result
	}

	result = ctx.InsertEntry(k, &sle.Favorites{
		Owner:     owner,
		Number:    s.Number,
		Color:     s.Color,
		Authority: owner,
		Reserve:   reserve,
	})
	if result == tx.TesSUCCESS {
		ctx.Debugf("user %s's favorite number is %d and favorite color is %q", s.Account, s.Number, s.Color)
	}
	return result
}

func validateColor(color string) error {
	if err := sle.ValidateColor(color); err != nil {
		return errors.New("temBAD_COLOR: " + err.Error())
	}
	return nil
}
