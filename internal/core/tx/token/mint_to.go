package token

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeMintTo, func() tx.Transaction {
		return &MintTo{BaseTx: *tx.NewBaseTx(tx.TypeMintTo, "")}
	})
}

// MintTo creates Amount new units of Mint in Destination's holding account.
// Only the mint authority may sign it.
type MintTo struct {
	tx.BaseTx

	Mint        string `json:"Mint"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

// NewMintTo creates a new MintTo instruction
func NewMintTo(account, mint, destination string, amount uint64) *MintTo {
	return &MintTo{
		BaseTx:      *tx.NewBaseTx(tx.TypeMintTo, account),
		Mint:        mint,
		Destination: destination,
		Amount:      amount,
	}
}

// TxType returns the instruction type
func (m *MintTo) TxType() tx.Type {
	return tx.TypeMintTo
}

// Validate validates the MintTo instruction
func (m *MintTo) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(m.Mint) {
		return errors.New("temINVALID_ACCOUNT_ID: Mint is not a valid address")
	}
	if !addresscodec.IsValidAddress(m.Destination) {
		return errors.New("temINVALID_ACCOUNT_ID: Destination is not a valid address")
	}
	if m.Amount == 0 {
		return errors.New("temBAD_AMOUNT: Amount must be positive")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (m *MintTo) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(m)
}

// Accounts declares the mint and the destination holding account
func (m *MintTo) Accounts() ([]tx.AccountMeta, error) {
	mint, err := addresscodec.Decode(m.Mint)
	if err != nil {
		return nil, err
	}
	dest, err := addresscodec.Decode(m.Destination)
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.Mint(mint)),
		tx.Writable(keylet.TokenAccount(mint, dest)),
	}, nil
}

// Apply applies a MintTo instruction
func (m *MintTo) Apply(ctx *tx.ApplyContext) tx.Result {
	mintID := addresscodec.MustDecode(m.Mint)
	dest := addresscodec.MustDecode(m.Destination)

	mint, result := ctx.ReadMint(mintID)
	if result != tx.TesSUCCESS {
		return result
	}
	if mint.MintAuthority != ctx.Signer {
		return tx.TecUNAUTHORIZED
	}
	if mint.Supply+m.Amount < mint.Supply {
		return tx.TecOVERFLOW
	}

	k := keylet.TokenAccount(mintID, dest)
	holding, result := ctx.ReadTokenAccount(k)
	if result != tx.TesSUCCESS {
		return result
	}

	mint.Supply += m.Amount
	holding.Amount += m.Amount

	if result := ctx.UpdateEntry(keylet.Mint(mintID), mint); result != tx.TesSUCCESS {
		return result
	}
	return ctx.UpdateEntry(k, holding)
}
