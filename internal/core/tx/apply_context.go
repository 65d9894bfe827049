package tx

import (
	"errors"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// ApplyContext provides all the state and helpers needed to apply an instruction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Signer is the decoded identity that signed the instruction
	Signer [32]byte

	// Config holds engine configuration (reserve, sequence, logging)
	Config EngineConfig

	// TxHash is the hash of the current instruction
	TxHash [32]byte

	// Metadata is filled in by the engine once the instruction commits
	Metadata *Metadata
}

// Debugf writes program output to the engine log, if one is configured.
func (ctx *ApplyContext) Debugf(format string, arguments ...interface{}) {
	if ctx.Config.Log != nil {
		ctx.Config.Log.Debugf(format, arguments...)
	}
}

// viewResult maps a view error onto a result code.
func viewResult(err error) Result {
	switch {
	case errors.Is(err, ErrUndeclaredAccount):
		return TefUNDECLARED_ACCOUNT
	case errors.Is(err, ErrReadOnlyAccount):
		return TefREADONLY_ACCOUNT
	default:
		return TefINTERNAL
	}
}

// ReadEntry loads the entry at k into out. It returns tecNO_ENTRY when the
// slot is empty.
func (ctx *ApplyContext) ReadEntry(k keylet.Keylet, out entry.Entry) Result {
	data, err := ctx.View.Read(k)
	if err != nil {
		return viewResult(err)
	}
	if data == nil {
		return TecNO_ENTRY
	}
	if err := sle.Decode(data, out); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

// Exists reports whether slot k holds an entry.
func (ctx *ApplyContext) Exists(k keylet.Keylet) (bool, Result) {
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return false, viewResult(err)
	}
	return exists, TesSUCCESS
}

// InsertEntry creates e at k. It returns tecDUPLICATE if k is occupied.
func (ctx *ApplyContext) InsertEntry(k keylet.Keylet, e entry.Entry) Result {
	exists, result := ctx.Exists(k)
	if result != TesSUCCESS {
		return result
	}
	if exists {
		return TecDUPLICATE
	}

	data, err := sle.Serialize(e)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Insert(k, data); err != nil {
		return viewResult(err)
	}
	return TesSUCCESS
}

// UpdateEntry overwrites the entry at k with e.
func (ctx *ApplyContext) UpdateEntry(k keylet.Keylet, e entry.Entry) Result {
	data, err := sle.Serialize(e)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(k, data); err != nil {
		return viewResult(err)
	}
	return TesSUCCESS
}

// EraseEntry closes the entry at k.
func (ctx *ApplyContext) EraseEntry(k keylet.Keylet) Result {
	if err := ctx.View.Erase(k); err != nil {
		return viewResult(err)
	}
	return TesSUCCESS
}

// ReadSystemAccount loads the native account of id.
func (ctx *ApplyContext) ReadSystemAccount(id [32]byte) (*sle.SystemAccount, Result) {
	acct := &sle.SystemAccount{}
	if result := ctx.ReadEntry(keylet.System(id), acct); result != TesSUCCESS {
		return nil, result
	}
	return acct, TesSUCCESS
}

// DebitLamports removes amount from the native balance of id.
func (ctx *ApplyContext) DebitLamports(id [32]byte, amount uint64) Result {
	acct, result := ctx.ReadSystemAccount(id)
	if result == TecNO_ENTRY {
		return TecINSUFFICIENT_FUNDS
	}
	if result != TesSUCCESS {
		return result
	}
	if acct.Lamports < amount {
		return TecINSUFFICIENT_FUNDS
	}
	acct.Lamports -= amount
	return ctx.UpdateEntry(keylet.System(id), acct)
}

// CreditLamports adds amount to the native balance of id, creating the
// native account if needed.
func (ctx *ApplyContext) CreditLamports(id [32]byte, amount uint64) Result {
	acct, result := ctx.ReadSystemAccount(id)
	switch result {
	case TesSUCCESS:
		if acct.Lamports+amount < acct.Lamports {
			return TecOVERFLOW
		}
		acct.Lamports += amount
		return ctx.UpdateEntry(keylet.System(id), acct)
	case TecNO_ENTRY:
		return ctx.InsertEntry(keylet.System(id), &sle.SystemAccount{Account: id, Lamports: amount})
	default:
		return result
	}
}

// ChargeReserve takes the per-entry reserve from payer and returns the
// amount taken, to be stored on the new entry.
func (ctx *ApplyContext) ChargeReserve(payer [32]byte) (uint64, Result) {
	reserve := ctx.Config.ReservePerEntry
	if reserve == 0 {
		return 0, TesSUCCESS
	}
	if result := ctx.DebitLamports(payer, reserve); result != TesSUCCESS {
		if result == TecINSUFFICIENT_FUNDS {
			return 0, TecINSUFFICIENT_RESERVE
		}
		return 0, result
	}
	return reserve, TesSUCCESS
}

// RefundReserve returns the reserve held by a closed entry to destination.
func (ctx *ApplyContext) RefundReserve(destination [32]byte, reserve uint64) Result {
	if reserve == 0 {
		return TesSUCCESS
	}
	return ctx.CreditLamports(destination, reserve)
}
