package service

import "github.com/LeJamon/goProgramsd/internal/core/tx"

// Hooks lets callers observe applied instructions without the service
// depending on them. Callbacks run on their own goroutine.
type Hooks struct {
	// OnInstruction is called once per applied instruction
	OnInstruction func(event InstructionEvent)
}

// InstructionEvent describes one applied instruction
type InstructionEvent struct {
	Hash     [32]byte
	Type     string
	Account  string
	Sequence uint64
	Result   string

	// AffectedEntries counts the entries created, modified or deleted
	AffectedEntries int
}

// publish must be called with s.mu held
func (s *Service) publish(instruction tx.Transaction, result *SubmitResult) {
	if s.hooks == nil || s.hooks.OnInstruction == nil {
		return
	}

	event := InstructionEvent{
		Hash:     result.Hash,
		Type:     instruction.TxType().String(),
		Account:  instruction.GetCommon().Account,
		Sequence: result.Sequence,
		Result:   result.Result.String(),
	}
	if result.Metadata != nil {
		event.AffectedEntries = len(result.Metadata.AffectedNodes)
	}
	go s.hooks.OnInstruction(event)
}
