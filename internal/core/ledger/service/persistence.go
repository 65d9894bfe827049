package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

// record writes an applied instruction to the history repository
func (s *Service) record(ctx context.Context, instruction tx.Transaction, result *SubmitResult) error {
	if s.history == nil {
		return nil
	}

	raw, err := tx.ToJSON(instruction)
	if err != nil {
		return err
	}
	var meta []byte
	if result.Metadata != nil {
		if meta, err = json.Marshal(result.Metadata); err != nil {
			return err
		}
	}

	signer, err := instruction.GetCommon().AccountID()
	if err != nil {
		return err
	}
	parties, err := parties(instruction, signer)
	if err != nil {
		return err
	}

	err = s.history.Record(ctx, &relationaldb.InstructionRecord{
		Hash:      relationaldb.Hash(result.Hash),
		Sequence:  result.Sequence,
		Type:      instruction.TxType().String(),
		Account:   relationaldb.AccountID(signer),
		Result:    result.Result.String(),
		Applied:   result.Applied,
		RawTxn:    raw,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
		Parties:   parties,
	})
	if errors.Is(err, relationaldb.ErrDuplicateEntry) {
		// identical unsigned resubmissions share a hash
		s.debugf("history already holds %X", result.Hash)
		return nil
	}
	return err
}

// parties returns every identity named by an instruction field other than
// the signer, in field order.
func parties(instruction tx.Transaction, signer [32]byte) ([]relationaldb.AccountID, error) {
	flat, err := instruction.Flatten()
	if err != nil {
		return nil, err
	}

	seen := map[[32]byte]bool{signer: true}
	var out []relationaldb.AccountID
	for _, name := range sortedKeys(flat) {
		value, ok := flat[name].(string)
		if !ok || name == "Account" || name == "Signature" || name == "Memo" {
			continue
		}
		id, err := addresscodec.Decode(value)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, relationaldb.AccountID(id))
	}
	return out, nil
}
