package tx

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// Engine processes instructions against a ledger view. It does no locking
// of its own; callers serialise Apply calls on one view.
type Engine struct {
	view   LedgerView
	config EngineConfig
}

// EngineConfig holds configuration for the instruction engine
type EngineConfig struct {
	// ReservePerEntry is the number of lamports locked by every entry an
	// instruction creates. It is returned when the entry is closed.
	ReservePerEntry uint64

	// Sequence is the ledger sequence assigned to the instruction being applied
	Sequence uint64

	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool

	// Log receives per-instruction program output. Optional.
	Log *logger.L
}

// LedgerView provides read/write access to ledger state.
// Read returns nil, nil for absent entries.
type LedgerView interface {
	// Read reads a ledger entry
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries
	// If fn returns false, iteration stops early
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// Committer is implemented by views that can apply a whole change set
// atomically. ApplyStateTable prefers it over entry-by-entry writes.
type Committer interface {
	Commit(changes []Change) error
}

// Change is one entry-level effect of an applied instruction.
type Change struct {
	Key    [32]byte
	Action Action
	Data   []byte // nil for ActionErase
}

// ApplyResult contains the result of applying an instruction
type ApplyResult struct {
	// Result is the instruction result code
	Result Result

	// Applied indicates if the instruction changed the ledger
	Applied bool

	// Hash identifies the instruction
	Hash [32]byte

	// Metadata contains the changes made by the instruction
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// Err maps the result onto the shared error taxonomy.
func (r ApplyResult) Err() error {
	return r.Result.Err()
}

// Metadata tracks changes made by an instruction
type Metadata struct {
	// AffectedNodes lists all nodes that were created, modified, or deleted
	AffectedNodes []AffectedNode

	// Sequence is the ledger sequence the instruction was applied at
	Sequence uint64

	// TransactionResult is the result code
	TransactionResult Result
}

// AffectedNode is an alias for sle.AffectedNode
type AffectedNode = sle.AffectedNode

// MarshalJSON renders metadata with nodes ordered by LedgerIndex
func (m Metadata) MarshalJSON() ([]byte, error) {
	sortedNodes := make([]AffectedNode, len(m.AffectedNodes))
	copy(sortedNodes, m.AffectedNodes)
	sort.Slice(sortedNodes, func(i, j int) bool {
		return sortedNodes[i].LedgerIndex < sortedNodes[j].LedgerIndex
	})

	affectedNodes := make([]map[string]any, 0, len(sortedNodes))
	for _, node := range sortedNodes {
		affectedNodes = append(affectedNodes, affectedNodeToJSON(node))
	}

	return json.Marshal(map[string]any{
		"AffectedNodes":     affectedNodes,
		"Sequence":          m.Sequence,
		"TransactionResult": m.TransactionResult.String(),
	})
}

// affectedNodeToJSON wraps a node in its NodeType, e.g. {"ModifiedNode": {...}}
func affectedNodeToJSON(n AffectedNode) map[string]any {
	inner := map[string]any{
		"LedgerEntryType": n.LedgerEntryType,
		"LedgerIndex":     n.LedgerIndex,
	}
	if n.FinalFields != nil {
		inner["FinalFields"] = n.FinalFields
	}
	if len(n.PreviousFields) > 0 {
		inner["PreviousFields"] = n.PreviousFields
	}
	if n.NewFields != nil {
		inner["NewFields"] = n.NewFields
	}
	return map[string]any{n.NodeType: inner}
}

// NewEngine creates a new instruction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

// Apply processes an instruction and, if it succeeds, commits every change
// it made to the engine's view. A failed instruction changes nothing.
func (e *Engine) Apply(tx Transaction) ApplyResult {
	// Step 1: Preflight checks (syntax and signature)
	result := e.preflight(tx)
	if !result.IsSuccess() {
		return ApplyResult{Result: result, Message: result.Message()}
	}

	// Step 2: Compute instruction hash
	txHash, err := ComputeHash(tx)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	// Step 3: Preclaim - resolve the declared account list
	declared, result := e.preclaim(tx)
	if !result.IsSuccess() {
		return ApplyResult{Result: result, Hash: txHash, Message: result.Message()}
	}

	// Step 4: Apply
	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0),
		Sequence:          e.config.Sequence,
		TransactionResult: TesSUCCESS,
	}
	result = e.doApply(tx, declared, metadata, txHash)
	metadata.TransactionResult = result

	return ApplyResult{
		Result:   result,
		Applied:  result.IsApplied(),
		Hash:     txHash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight performs initial validation on the instruction
func (e *Engine) preflight(tx Transaction) Result {
	common := tx.GetCommon()

	if common.Account == "" {
		return TemBAD_SRC_ACCOUNT
	}
	if common.TransactionType == "" {
		return TemINVALID
	}
	if common.TransactionType != tx.TxType().String() {
		return TemINVALID
	}

	// Verify signature (unless skipped for testing)
	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(tx); err != nil {
			return TemBAD_SIGNATURE
		}
	}

	// Instruction-specific validation
	if err := tx.Validate(); err != nil {
		return parseValidationError(err)
	}

	return TesSUCCESS
}

// preclaim resolves the slots the instruction declares. A slot declared
// twice is writable if any declaration is.
func (e *Engine) preclaim(tx Transaction) (map[[32]byte]bool, Result) {
	metas, err := tx.Accounts()
	if err != nil {
		return nil, parseValidationError(err)
	}
	if len(metas) == 0 {
		return nil, TemMALFORMED
	}

	declared := make(map[[32]byte]bool, len(metas))
	for _, m := range metas {
		declared[m.Keylet.Key] = declared[m.Keylet.Key] || m.Writable
	}
	return declared, TesSUCCESS
}

// doApply runs the instruction against a staging table and commits the
// table only on tesSUCCESS.
func (e *Engine) doApply(tx Transaction, declared map[[32]byte]bool, metadata *Metadata, txHash [32]byte) Result {
	signer, err := tx.GetCommon().AccountID()
	if err != nil {
		return TemBAD_SRC_ACCOUNT
	}

	table := NewApplyStateTable(e.view, declared)
	if result := consumeSequence(table, signer, tx.GetCommon().Sequence); result != TesSUCCESS {
		return result
	}

	ctx := &ApplyContext{
		View:     table,
		Signer:   signer,
		Config:   e.config,
		TxHash:   txHash,
		Metadata: metadata,
	}

	result := TesSUCCESS
	if appliable, ok := tx.(Appliable); ok {
		result = appliable.Apply(ctx)
	}

	// An access violation overrides whatever the instruction reported
	if violation := table.Violation(); violation != TesSUCCESS {
		return violation
	}
	if !result.IsSuccess() {
		return result
	}

	generated, err := table.Apply()
	if err != nil {
		return TefINTERNAL
	}
	metadata.AffectedNodes = generated.AffectedNodes

	return result
}

// consumeSequence checks the instruction Sequence against the signer's
// account and advances it on the staging table, so the bump commits together
// with the instruction's own changes. A signer without a native account
// starts at zero and gets an empty one.
func consumeSequence(table *ApplyStateTable, signer [32]byte, sequence uint64) Result {
	result := TesSUCCESS
	err := table.unrestricted(func() error {
		k := keylet.System(signer)
		data, err := table.Read(k)
		if err != nil {
			return err
		}

		account := &sle.SystemAccount{Account: signer}
		if data != nil {
			if account, err = sle.ParseSystemAccount(data); err != nil {
				return err
			}
		}

		if sequence < account.Sequence {
			result = TefPAST_SEQ
			return nil
		}
		if sequence > account.Sequence {
			result = TerPRE_SEQ
			return nil
		}

		account.Sequence++
		updated, err := sle.Serialize(account)
		if err != nil {
			return err
		}
		if data == nil {
			return table.Insert(k, updated)
		}
		return table.Update(k, updated)
	})
	if err != nil {
		return TefINTERNAL
	}
	return result
}

// parseValidationError extracts a result code from a validation error message.
// Validate() implementations prefix messages with the code, e.g.
// "temBAD_AMOUNT: amount must be positive". Anything else is temINVALID.
func parseValidationError(err error) Result {
	msg := err.Error()

	code := msg
	if i := strings.IndexAny(msg, ": "); i >= 0 {
		code = msg[:i]
	}

	if result, ok := ResultFromString(code); ok && (result.IsTem() || result.IsTec()) {
		return result
	}
	return TemINVALID
}
