// Package system implements native lamport transfers.
package system

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeSystemTransfer, func() tx.Transaction {
		return &SystemTransfer{BaseTx: *tx.NewBaseTx(tx.TypeSystemTransfer, "")}
	})
}

// SystemTransfer sends Lamports from the signer to Destination, creating the
// destination's native account if needed.
type SystemTransfer struct {
	tx.BaseTx

	Destination string `json:"Destination"`
	Lamports    uint64 `json:"Lamports"`
}

// NewSystemTransfer creates a new SystemTransfer instruction
func NewSystemTransfer(account, destination string, lamports uint64) *SystemTransfer {
	return &SystemTransfer{
		BaseTx:      *tx.NewBaseTx(tx.TypeSystemTransfer, account),
		Destination: destination,
		Lamports:    lamports,
	}
}

// TxType returns the instruction type
func (s *SystemTransfer) TxType() tx.Type {
	return tx.TypeSystemTransfer
}

// Validate validates the SystemTransfer instruction
func (s *SystemTransfer) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(s.Destination) {
		return errors.New("temINVALID_ACCOUNT_ID: Destination is not a valid address")
	}
	if s.Lamports == 0 {
		return errors.New("temBAD_AMOUNT: Lamports must be positive")
	}
	if s.Destination == s.Account {
		return errors.New("temREDUNDANT: Destination is the source")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (s *SystemTransfer) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(s)
}

// Accounts declares both native accounts
func (s *SystemTransfer) Accounts() ([]tx.AccountMeta, error) {
	signer, err := s.AccountID()
	if err != nil {
		return nil, err
	}
	dest, err := addresscodec.Decode(s.Destination)
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{
		tx.Writable(keylet.System(signer)),
		tx.Writable(keylet.System(dest)),
	}, nil
}

// Apply applies a SystemTransfer instruction
func (s *SystemTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	dest := addresscodec.MustDecode(s.Destination)

	if result := ctx.DebitLamports(ctx.Signer, s.Lamports); result != tx.TesSUCCESS {
		return result
	}
	return ctx.CreditLamports(dest, s.Lamports)
}
