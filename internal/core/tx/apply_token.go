package tx

import (
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// ReadMint loads the mint entry for mint.
func (ctx *ApplyContext) ReadMint(mint [32]byte) (*sle.Mint, Result) {
	m := &sle.Mint{}
	if result := ctx.ReadEntry(keylet.Mint(mint), m); result != TesSUCCESS {
		return nil, result
	}
	return m, TesSUCCESS
}

// ReadTokenAccount loads the holding account at k.
func (ctx *ApplyContext) ReadTokenAccount(k keylet.Keylet) (*sle.TokenAccount, Result) {
	a := &sle.TokenAccount{}
	if result := ctx.ReadEntry(k, a); result != TesSUCCESS {
		return nil, result
	}
	return a, TesSUCCESS
}

// CreateTokenAccount opens the holding account of owner for mint, paid for
// by payer. The mint must exist.
func (ctx *ApplyContext) CreateTokenAccount(mint, owner, payer [32]byte) Result {
	if _, result := ctx.ReadMint(mint); result != TesSUCCESS {
		return result
	}

	k := keylet.TokenAccount(mint, owner)
	exists, result := ctx.Exists(k)
	if result != TesSUCCESS {
		return result
	}
	if exists {
		return TecDUPLICATE
	}

	reserve, result := ctx.ChargeReserve(payer)
	if result != TesSUCCESS {
		return result
	}

	return ctx.InsertEntry(k, &sle.TokenAccount{
		Mint:    mint,
		Owner:   owner,
		Reserve: reserve,
	})
}

// EnsureTokenAccount opens the holding account of owner for mint unless it
// already exists.
func (ctx *ApplyContext) EnsureTokenAccount(mint, owner, payer [32]byte) Result {
	exists, result := ctx.Exists(keylet.TokenAccount(mint, owner))
	if result != TesSUCCESS {
		return result
	}
	if exists {
		return TesSUCCESS
	}
	return ctx.CreateTokenAccount(mint, owner, payer)
}

// TransferTokens moves amount of mint between two holding accounts. Both
// accounts must hold mint; the source must cover amount.
func (ctx *ApplyContext) TransferTokens(mint [32]byte, from, to keylet.Keylet, amount uint64) Result {
	src, result := ctx.ReadTokenAccount(from)
	if result != TesSUCCESS {
		return result
	}
	dst, result := ctx.ReadTokenAccount(to)
	if result != TesSUCCESS {
		return result
	}
	if src.Mint != mint || dst.Mint != mint {
		return TecMISMATCHED_MINT
	}
	if src.Amount < amount {
		return TecINSUFFICIENT_FUNDS
	}
	if from.Key == to.Key || amount == 0 {
		return TesSUCCESS
	}
	if dst.Amount+amount < dst.Amount {
		return TecOVERFLOW
	}

	src.Amount -= amount
	dst.Amount += amount

	if result := ctx.UpdateEntry(from, src); result != TesSUCCESS {
		return result
	}
	return ctx.UpdateEntry(to, dst)
}

// CloseTokenAccount erases an empty holding account and sends its reserve
// to destination.
func (ctx *ApplyContext) CloseTokenAccount(k keylet.Keylet, destination [32]byte) Result {
	a, result := ctx.ReadTokenAccount(k)
	if result != TesSUCCESS {
		return result
	}
	if a.Amount != 0 {
		return TefINTERNAL
	}
	if result := ctx.EraseEntry(k); result != TesSUCCESS {
		return result
	}
	return ctx.RefundReserve(destination, a.Reserve)
}
