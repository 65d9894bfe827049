package testing

import "github.com/shopspring/decimal"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// SOL converts whole SOL to lamports.
func SOL(n uint64) uint64 {
	return n * LamportsPerSOL
}

// Tokens converts a decimal token amount to base units of a mint with the
// given precision. It panics if the amount is not representable.
func Tokens(amount string, decimals uint8) uint64 {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic("invalid token amount " + amount + ": " + err.Error())
	}
	units := d.Shift(int32(decimals))
	if !units.IsInteger() || units.IsNegative() {
		panic("token amount " + amount + " is not representable")
	}
	return units.BigInt().Uint64()
}
