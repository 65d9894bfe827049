package favorites

import (
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeSetFavoritesV1, func() tx.Transaction {
		return &SetFavoritesV1{BaseTx: *tx.NewBaseTx(tx.TypeSetFavoritesV1, "")}
	})
}

// SetFavoritesV1 creates the signer's record in the legacy schema. The V1
// record lives at its own address and is independent of the current one.
type SetFavoritesV1 struct {
	tx.BaseTx

	Number uint64 `json:"Number"`
	Color  string `json:"Color"`
}

// NewSetFavoritesV1 creates a new SetFavoritesV1 instruction
func NewSetFavoritesV1(account string, number uint64, color string) *SetFavoritesV1 {
	return &SetFavoritesV1{
		BaseTx: *tx.NewBaseTx(tx.TypeSetFavoritesV1, account),
		Number: number,
		Color:  color,
	}
}

// TxType returns the instruction type
func (s *SetFavoritesV1) TxType() tx.Type {
	return tx.TypeSetFavoritesV1
}

// Validate validates the SetFavoritesV1 instruction
func (s *SetFavoritesV1) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	return validateColor(s.Color)
}

// Flatten returns a flat map of all instruction fields
func (s *SetFavoritesV1) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Accounts declares the owner's native account and legacy record
func (s *SetFavoritesV1) Accounts() ([]tx.AccountMeta, error) {
	owner, err := s.AccountID()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.System(owner)),
		tx.Writable(keylet.FavoritesV1(owner)),
	}, nil
}

// Apply applies a SetFavoritesV1 instruction
func (s *SetFavoritesV1) Apply(ctx *tx.ApplyContext) tx.Result {
	owner := ctx.Signer
	k := keylet.FavoritesV1(owner)

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

	result = ctx.InsertEntry(k, &sle.FavoritesV1{
		Owner:   owner,
		Number:  s.Number,
		Color:   s.Color,
		Reserve: reserve,
	})
	if result == tx.TesSUCCESS {
		ctx.Debugf("user %s's v1 favorite number is %d and favorite color is %q", s.Account, s.Number, s.Color)
	}
	return result
}
