package token

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeCreateTokenAccount, func() tx.Transaction {
		return &CreateTokenAccount{BaseTx: *tx.NewBaseTx(tx.TypeCreateTokenAccount, "")}
	})
}

// CreateTokenAccount opens the holding account of Owner for Mint. The signer
// pays the reserve.
type CreateTokenAccount struct {
	tx.BaseTx

	// Mint is the token type (required)
	Mint string `json:"Mint"`

	// Owner is the holder. Defaults to the signer.
	Owner string `json:"Owner,omitempty"`

	// Idempotent turns "already exists" into success
	Idempotent bool `json:"Idempotent,omitempty"`
}

// NewCreateTokenAccount creates a new CreateTokenAccount instruction
func NewCreateTokenAccount(account, mint, owner string) *CreateTokenAccount {
	return &CreateTokenAccount{
		BaseTx: *tx.NewBaseTx(tx.TypeCreateTokenAccount, account),
		Mint:   mint,
		Owner:  owner,
	}
}

// TxType returns the instruction type
func (c *CreateTokenAccount) TxType() tx.Type {
	return tx.TypeCreateTokenAccount
}

// Validate validates the CreateTokenAccount instruction
func (c *CreateTokenAccount) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(c.Mint) {
		return errors.New("temINVALID_ACCOUNT_ID: Mint is not a valid address")
	}
	if c.Owner != "" && !addresscodec.IsValidAddress(c.Owner) {
		return errors.New("temINVALID_ACCOUNT_ID: Owner is not a valid address")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (c *CreateTokenAccount) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(c)
}

func (c *CreateTokenAccount) owner() ([32]byte, error) {
	if c.Owner == "" {
		return c.AccountID()
	}
	return addresscodec.Decode(c.Owner)
}

// Accounts declares the payer, the mint and the new holding account
func (c *CreateTokenAccount) Accounts() ([]tx.AccountMeta, error) {
	signer, err := c.AccountID()
	if err != nil {
		return nil, err
	}
	mint, err := addresscodec.Decode(c.Mint)
	if err != nil {
		return nil, err
	}
	owner, err := c.owner()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.System(signer)),
		tx.ReadOnly(keylet.Mint(mint)),
		tx.Writable(keylet.TokenAccount(mint, owner)),
	}, nil
}

// Apply applies a CreateTokenAccount instruction
func (c *CreateTokenAccount) Apply(ctx *tx.ApplyContext) tx.Result {
	mint := addresscodec.MustDecode(c.Mint)
	owner, err := c.owner()
	if err != nil {
		return tx.TemINVALID_ACCOUNT_ID
	}

	if c.Idempotent {
		return ctx.EnsureTokenAccount(mint, owner, ctx.Signer)
	}
	return ctx.CreateTokenAccount(mint, owner, ctx.Signer)
}
