package tx

import (
	"errors"
	"fmt"
)

// Result represents an instruction result code
type Result int

// Instruction result codes, grouped by category: tes, tec, tef, tem, ter
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes: the instruction was well formed but failed against current state.
	// Nothing is applied.
	TecUNAUTHORIZED         Result = 100
	TecINSUFFICIENT_FUNDS   Result = 101
	TecINSUFFICIENT_RESERVE Result = 102
	TecNO_ENTRY             Result = 103
	TecDUPLICATE            Result = 104
	TecUNKNOWN_VERSION      Result = 105
	TecINVALID_ACCOUNT      Result = 106
	TecMISMATCHED_MINT      Result = 107
	TecOVERFLOW             Result = 108

	// tef codes: engine failure
	TefFAILURE            Result = -199
	TefINTERNAL           Result = -198
	TefBAD_SIGNATURE      Result = -197
	TefUNDECLARED_ACCOUNT Result = -196
	TefREADONLY_ACCOUNT   Result = -195
	TefPAST_SEQ           Result = -190

	// tem codes: malformed instruction
	TemMALFORMED          Result = -299
	TemBAD_AMOUNT         Result = -298
	TemBAD_SIGNATURE      Result = -297
	TemBAD_SRC_ACCOUNT    Result = -296
	TemINVALID            Result = -295
	TemINVALID_ACCOUNT_ID Result = -294
	TemSAME_MINT          Result = -293
	TemBAD_COLOR          Result = -292
	TemREDUNDANT          Result = -291
	TemUNKNOWN            Result = -290

	// ter codes
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

var resultNames = map[Result]string{
	TesSUCCESS:              "tesSUCCESS",
	TecUNAUTHORIZED:         "tecUNAUTHORIZED",
	TecINSUFFICIENT_FUNDS:   "tecINSUFFICIENT_FUNDS",
	TecINSUFFICIENT_RESERVE: "tecINSUFFICIENT_RESERVE",
	TecNO_ENTRY:             "tecNO_ENTRY",
	TecDUPLICATE:            "tecDUPLICATE",
	TecUNKNOWN_VERSION:      "tecUNKNOWN_VERSION",
	TecINVALID_ACCOUNT:      "tecINVALID_ACCOUNT",
	TecMISMATCHED_MINT:      "tecMISMATCHED_MINT",
	TecOVERFLOW:             "tecOVERFLOW",
	TefFAILURE:              "tefFAILURE",
	TefINTERNAL:             "tefINTERNAL",
	TefBAD_SIGNATURE:        "tefBAD_SIGNATURE",
	TefUNDECLARED_ACCOUNT:   "tefUNDECLARED_ACCOUNT",
	TefREADONLY_ACCOUNT:     "tefREADONLY_ACCOUNT",
	TefPAST_SEQ:             "tefPAST_SEQ",
	TemMALFORMED:            "temMALFORMED",
	TemBAD_AMOUNT:           "temBAD_AMOUNT",
	TemBAD_SIGNATURE:        "temBAD_SIGNATURE",
	TemBAD_SRC_ACCOUNT:      "temBAD_SRC_ACCOUNT",
	TemINVALID:              "temINVALID",
	TemINVALID_ACCOUNT_ID:   "temINVALID_ACCOUNT_ID",
	TemSAME_MINT:            "temSAME_MINT",
	TemBAD_COLOR:            "temBAD_COLOR",
	TemREDUNDANT:            "temREDUNDANT",
	TemUNKNOWN:              "temUNKNOWN",
	TerNO_ACCOUNT:           "terNO_ACCOUNT",
	TerPRE_SEQ:              "terPRE_SEQ",
}

// String returns the string representation of the result code
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", r)
}

// ResultFromString returns the result code for a name such as "tecNO_ENTRY"
func ResultFromString(name string) (Result, bool) {
	for r, n := range resultNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (state) failure code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (engine failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// IsApplied returns true if the instruction changed ledger state.
// Every failure, tec included, leaves state untouched.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The instruction was applied."
	case TecUNAUTHORIZED:
		return "You are not authorized to perform this action."
	case TecINSUFFICIENT_FUNDS:
		return "Insufficient token balance."
	case TecINSUFFICIENT_RESERVE:
		return "Insufficient native balance to fund the reserve."
	case TecNO_ENTRY:
		return "The referenced entry does not exist."
	case TecDUPLICATE:
		return "An entry already exists at the derived address."
	case TecUNKNOWN_VERSION:
		return "Unknown favorites version."
	case TecINVALID_ACCOUNT:
		return "Invalid account."
	case TecMISMATCHED_MINT:
		return "Mint does not match the referenced entry."
	case TecOVERFLOW:
		return "Amount overflows the supply."
	case TefUNDECLARED_ACCOUNT:
		return "The instruction touched an account it did not declare."
	case TefREADONLY_ACCOUNT:
		return "The instruction wrote to an account declared read-only."
	case TemBAD_AMOUNT:
		return "Amounts must be positive."
	case TemSAME_MINT:
		return "Offered and wanted mints must differ."
	case TemBAD_COLOR:
		return "Color is too long."
	case TemBAD_SIGNATURE:
		return "Invalid signature."
	case TemINVALID:
		return "The instruction is ill-formed."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TefPAST_SEQ:
		return "This sequence number has already passed."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior instruction."
	default:
		return r.String()
	}
}

// Error taxonomy shared by every instruction. Use errors.Is against the
// value returned by Result.Err.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInternal          = errors.New("internal error")
)

// ResultError carries the exact result code behind a taxonomy error.
type ResultError struct {
	Result Result
	kind   error
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Result, e.Result.Message())
}

// Unwrap exposes the taxonomy sentinel.
func (e *ResultError) Unwrap() error {
	return e.kind
}

// Err returns nil for success and a *ResultError wrapping one of the taxonomy
// sentinels otherwise.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &ResultError{Result: r, kind: r.kind()}
}

func (r Result) kind() error {
	switch r {
	case TecUNAUTHORIZED, TefBAD_SIGNATURE, TemBAD_SIGNATURE:
		return ErrUnauthorized
	case TecINSUFFICIENT_FUNDS, TecINSUFFICIENT_RESERVE:
		return ErrInsufficientFunds
	case TecNO_ENTRY, TerNO_ACCOUNT:
		return ErrNotFound
	case TecDUPLICATE:
		return ErrDuplicate
	case TecUNKNOWN_VERSION, TecINVALID_ACCOUNT, TecMISMATCHED_MINT, TecOVERFLOW,
		TefPAST_SEQ, TerPRE_SEQ:
		return ErrInvalidArgument
	}
	if r.IsTem() {
		return ErrInvalidArgument
	}
	return ErrInternal
}
