// Package token implements the token primitives: CreateMint,
// CreateTokenAccount, MintTo and Transfer.
package token

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeCreateMint, func() tx.Transaction {
		return &CreateMint{BaseTx: *tx.NewBaseTx(tx.TypeCreateMint, "")}
	})
}

// CreateMint registers a new token type. The signer pays the reserve.
type CreateMint struct {
	tx.BaseTx

	// Mint is the address of the new token type (required)
	Mint string `json:"Mint"`

	// Decimals is the display precision of the token
	Decimals uint8 `json:"Decimals"`

	// MintAuthority may create supply. Defaults to the signer.
	MintAuthority string `json:"MintAuthority,omitempty"`
}

// NewCreateMint creates a new CreateMint instruction
func NewCreateMint(account, mint string, decimals uint8) *CreateMint {
	return &CreateMint{
		BaseTx:   *tx.NewBaseTx(tx.TypeCreateMint, account),
		Mint:     mint,
		Decimals: decimals,
	}
}

// TxType returns the instruction type
func (c *CreateMint) TxType() tx.Type {
	return tx.TypeCreateMint
}

// Validate validates the CreateMint instruction
func (c *CreateMint) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(c.Mint) {
		return errors.New("temINVALID_ACCOUNT_ID: Mint is not a valid address")
	}
	if c.MintAuthority != "" && !addresscodec.IsValidAddress(c.MintAuthority) {
		return errors.New("temINVALID_ACCOUNT_ID: MintAuthority is not a valid address")
	}
	if c.Decimals > sle.MaxDecimals {
		return errors.New("temMALFORMED: Decimals out of range")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (c *CreateMint) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(c)
}

// Accounts declares the mint slot and the signer's native account
func (c *CreateMint) Accounts() ([]tx.AccountMeta, error) {
	signer, err := c.AccountID()
	if err != nil {
		return nil, err
	}
	mint, err := addresscodec.Decode(c.Mint)
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.System(signer)),
		tx.Writable(keylet.Mint(mint)),
	}, nil
}

// Apply applies a CreateMint instruction
func (c *CreateMint) Apply(ctx *tx.ApplyContext) tx.Result {
	mint := addresscodec.MustDecode(c.Mint)

	authority := ctx.Signer
	if c.MintAuthority != "" {
		authority = addresscodec.MustDecode(c.MintAuthority)
	}

	exists, result := ctx.Exists(keylet.Mint(mint))
	if result != tx.TesSUCCESS {
		return result
	}
	if exists {
		return tx.TecDUPLICATE
	}

	reserve, result := ctx.ChargeReserve(ctx.Signer)
	if result != tx.TesSUCCESS {
		return result
	}

	return ctx.InsertEntry(keylet.Mint(mint), &sle.Mint{
		Address:       mint,
		MintAuthority: authority,
		Decimals:      c.Decimals,
		Reserve:       reserve,
	})
}
