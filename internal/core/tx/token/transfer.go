package token

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeTransfer, func() tx.Transaction {
		return &Transfer{BaseTx: *tx.NewBaseTx(tx.TypeTransfer, "")}
	})
}

// Transfer moves Amount of Mint from the signer's holding account to
// Destination's.
type Transfer struct {
	tx.BaseTx

	Mint        string `json:"Mint"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

// NewTransfer creates a new Transfer instruction
func NewTransfer(account, mint, destination string, amount uint64) *Transfer {
	return &Transfer{
		BaseTx:      *tx.NewBaseTx(tx.TypeTransfer, account),
		Mint:        mint,
		Destination: destination,
		Amount:      amount,
	}
}

// TxType returns the instruction type
func (t *Transfer) TxType() tx.Type {
	return tx.TypeTransfer
}

// Validate validates the Transfer instruction
func (t *Transfer) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(t.Mint) {
		return errors.New("temINVALID_ACCOUNT_ID: Mint is not a valid address")
	}
	if !addresscodec.IsValidAddress(t.Destination) {
		return errors.New("temINVALID_ACCOUNT_ID: Destination is not a valid address")
	}
	if t.Amount == 0 {
		return errors.New("temBAD_AMOUNT: Amount must be positive")
	}
	if t.Destination == t.Account {
		return errors.New("temREDUNDANT: Destination is the source")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (t *Transfer) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(t)
}

// Accounts declares both holding accounts
func (t *Transfer) Accounts() ([]tx.AccountMeta, error) {
	signer, err := t.AccountID()
	if err != nil {
		return nil, err
	}
	mint, err := addresscodec.Decode(t.Mint)
	if err != nil {
		return nil, err
	}
	dest, err := addresscodec.Decode(t.Destination)
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.TokenAccount(mint, signer)),
		tx.Writable(keylet.TokenAccount(mint, dest)),
	}, nil
}

// Apply applies a Transfer instruction
func (t *Transfer) Apply(ctx *tx.ApplyContext) tx.Result {
	mint := addresscodec.MustDecode(t.Mint)
	dest := addresscodec.MustDecode(t.Destination)

	return ctx.TransferTokens(mint,
		keylet.TokenAccount(mint, ctx.Signer),
		keylet.TokenAccount(mint, dest),
		t.Amount)
}
