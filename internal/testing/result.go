package testing

import "github.com/LeJamon/goProgramsd/internal/core/tx"

// TxResult represents the result of applying an instruction.
type TxResult struct {
	// Code is the engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the instruction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Hash identifies the instruction.
	Hash [32]byte

	// Metadata lists the entries the instruction changed, if it was applied.
	Metadata *tx.Metadata

	// Err maps the code onto the error taxonomy; nil on success.
	Err error
}

// Common result codes.
const (
	TesSUCCESS = "tesSUCCESS"

	TecUNAUTHORIZED         = "tecUNAUTHORIZED"
	TecINSUFFICIENT_FUNDS   = "tecINSUFFICIENT_FUNDS"
	TecINSUFFICIENT_RESERVE = "tecINSUFFICIENT_RESERVE"
	TecNO_ENTRY             = "tecNO_ENTRY"
	TecDUPLICATE            = "tecDUPLICATE"
	TecUNKNOWN_VERSION      = "tecUNKNOWN_VERSION"
	TecINVALID_ACCOUNT      = "tecINVALID_ACCOUNT"
	TecMISMATCHED_MINT      = "tecMISMATCHED_MINT"
	TecOVERFLOW             = "tecOVERFLOW"

	TefUNDECLARED_ACCOUNT = "tefUNDECLARED_ACCOUNT"
	TefREADONLY_ACCOUNT   = "tefREADONLY_ACCOUNT"
	TefPAST_SEQ           = "tefPAST_SEQ"

	TerPRE_SEQ = "terPRE_SEQ"

	TemBAD_AMOUNT         = "temBAD_AMOUNT"
	TemBAD_COLOR          = "temBAD_COLOR"
	TemBAD_SIGNATURE      = "temBAD_SIGNATURE"
	TemINVALID_ACCOUNT_ID = "temINVALID_ACCOUNT_ID"
	TemSAME_MINT          = "temSAME_MINT"
	TemREDUNDANT          = "temREDUNDANT"
)

func newTxResult(r tx.ApplyResult) TxResult {
	return TxResult{
		Code:     r.Result.String(),
		Success:  r.Result.IsSuccess(),
		Message:  r.Message,
		Hash:     r.Hash,
		Metadata: r.Metadata,
		Err:      r.Err(),
	}
}
