package tx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// Access errors returned by the staging table when an instruction reaches
// outside the slots it declared.
var (
	ErrUndeclaredAccount = errors.New("account not declared by instruction")
	ErrReadOnlyAccount   = errors.New("account declared read-only")
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state (state before deletion for erases)
}

// ApplyStateTable wraps a LedgerView and stages every modification made by
// one instruction. Nothing reaches the base view until Apply.
type ApplyStateTable struct {
	base      LedgerView
	items     map[[32]byte]*TrackedEntry
	declared  map[[32]byte]bool // key -> writable
	violation Result
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base
// view. A nil declared map disables account restriction.
func NewApplyStateTable(base LedgerView, declared map[[32]byte]bool) *ApplyStateTable {
	return &ApplyStateTable{
		base:      base,
		items:     make(map[[32]byte]*TrackedEntry),
		declared:  declared,
		violation: TesSUCCESS,
	}
}

// Violation returns the first access violation seen, or tesSUCCESS.
func (t *ApplyStateTable) Violation() Result {
	return t.violation
}

// unrestricted runs fn with account restriction lifted. The engine uses it
// for bookkeeping on slots the instruction did not declare.
func (t *ApplyStateTable) unrestricted(fn func() error) error {
	declared := t.declared
	t.declared = nil
	defer func() { t.declared = declared }()
	return fn()
}

func (t *ApplyStateTable) checkAccess(k keylet.Keylet, write bool) error {
	if t.declared == nil {
		return nil
	}
	writable, ok := t.declared[k.Key]
	if !ok {
		if t.violation == TesSUCCESS {
			t.violation = TefUNDECLARED_ACCOUNT
		}
		return fmt.Errorf("%w: %X", ErrUndeclaredAccount, k.Key)
	}
	if write && !writable {
		if t.violation == TesSUCCESS {
			t.violation = TefREADONLY_ACCOUNT
		}
		return fmt.Errorf("%w: %X", ErrReadOnlyAccount, k.Key)
	}
	return nil
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if err := t.checkAccess(k, false); err != nil {
		return nil, err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if err := t.checkAccess(k, false); err != nil {
		return false, err
	}

	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}

	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if err := t.checkAccess(k, true); err != nil {
		return err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}

	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if err := t.checkAccess(k, true); err != nil {
		return err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry not found (deleted)")
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry not found")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}

	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if err := t.checkAccess(k, true); err != nil {
		return err
	}

	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry already deleted")
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		// Cache or Modify -> Erase; Current keeps the state before deletion
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry not found")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}

	return nil
}

// IsErased returns true if the entry at the given key has been erased.
func (t *ApplyStateTable) IsErased(k keylet.Keylet) bool {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action == ActionErase
	}
	return false
}

// ForEach iterates over the base view. Staged changes are not visible.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Changes returns the staged effects in key order, skipping reads and
// modifications that left the bytes unchanged.
func (t *ApplyStateTable) Changes() []Change {
	keys := make([][32]byte, 0, len(t.items))
	for key := range t.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		entry := t.items[key]
		switch entry.Action {
		case ActionCache:
			continue
		case ActionModify:
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			changes = append(changes, Change{Key: key, Action: ActionModify, Data: entry.Current})
		case ActionInsert:
			changes = append(changes, Change{Key: key, Action: ActionInsert, Data: entry.Current})
		case ActionErase:
			changes = append(changes, Change{Key: key, Action: ActionErase})
		}
	}
	return changes
}

// Apply commits all changes to the base view and returns generated metadata.
// When the base implements Committer the whole change set lands in one call.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0),
	}

	changes := t.Changes()
	for _, c := range changes {
		entry := t.items[c.Key]

		var (
			node AffectedNode
			err  error
		)
		switch c.Action {
		case ActionInsert:
			node, err = buildCreatedNode(c.Key, entry.Current)
		case ActionModify:
			node, err = buildModifiedNode(c.Key, entry.Original, entry.Current)
		case ActionErase:
			node, err = buildDeletedNode(c.Key, entry.Current)
		}
		if err != nil {
			return nil, err
		}
		metadata.AffectedNodes = append(metadata.AffectedNodes, node)
	}

	if committer, ok := t.base.(Committer); ok {
		if err := committer.Commit(changes); err != nil {
			return nil, err
		}
		return metadata, nil
	}

	for _, c := range changes {
		k := keylet.Unchecked(c.Key)
		var err error
		switch c.Action {
		case ActionInsert:
			err = t.base.Insert(k, c.Data)
		case ActionModify:
			err = t.base.Update(k, c.Data)
		case ActionErase:
			err = t.base.Erase(k)
		}
		if err != nil {
			return nil, err
		}
	}

	return metadata, nil
}

func ledgerIndex(key [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(key[:]))
}

func entryTypeName(data []byte) string {
	t, err := sle.PeekType(data)
	if err != nil {
		return "Unknown"
	}
	return t.String()
}

// buildCreatedNode creates metadata for a newly created entry
func buildCreatedNode(key [32]byte, data []byte) (AffectedNode, error) {
	fields, err := sle.Fields(data)
	if err != nil {
		return AffectedNode{}, err
	}
	return AffectedNode{
		NodeType:        "CreatedNode",
		LedgerEntryType: entryTypeName(data),
		LedgerIndex:     ledgerIndex(key),
		NewFields:       fields,
	}, nil
}

// buildModifiedNode creates metadata for a modified entry. PreviousFields
// holds only the fields whose value changed.
func buildModifiedNode(key [32]byte, original, current []byte) (AffectedNode, error) {
	finalFields, err := sle.Fields(current)
	if err != nil {
		return AffectedNode{}, err
	}
	originalFields, err := sle.Fields(original)
	if err != nil {
		return AffectedNode{}, err
	}

	previous := make(map[string]any)
	for name, value := range originalFields {
		if !reflect.DeepEqual(value, finalFields[name]) {
			previous[name] = value
		}
	}

	return AffectedNode{
		NodeType:        "ModifiedNode",
		LedgerEntryType: entryTypeName(current),
		LedgerIndex:     ledgerIndex(key),
		FinalFields:     finalFields,
		PreviousFields:  previous,
	}, nil
}

// buildDeletedNode creates metadata for a deleted entry
func buildDeletedNode(key [32]byte, current []byte) (AffectedNode, error) {
	fields, err := sle.Fields(current)
	if err != nil {
		return AffectedNode{}, err
	}
	return AffectedNode{
		NodeType:        "DeletedNode",
		LedgerEntryType: entryTypeName(current),
		LedgerIndex:     ledgerIndex(key),
		FinalFields:     fields,
	}, nil
}
