package sle

// AffectedNode represents a ledger entry affected by an instruction
type AffectedNode struct {
	// NodeType is "CreatedNode", "ModifiedNode", or "DeletedNode"
	NodeType string `json:"NodeType"`

	// LedgerEntryType is the type of ledger entry
	LedgerEntryType string `json:"LedgerEntryType"`

	// LedgerIndex is the key of the entry
	LedgerIndex string `json:"LedgerIndex"`

	// FinalFields contains the final state (for Modified/Deleted)
	FinalFields map[string]any `json:"FinalFields,omitempty"`

	// PreviousFields contains the changed fields' prior values (for Modified)
	PreviousFields map[string]any `json:"PreviousFields,omitempty"`

	// NewFields contains the new state (for Created)
	NewFields map[string]any `json:"NewFields,omitempty"`
}
