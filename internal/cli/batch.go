package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/service"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	_ "github.com/LeJamon/goProgramsd/internal/core/tx/all"
)

// batchStep is one instruction of a batch file.
type batchStep struct {
	// Signer is the seed of the signing key. Its identity fills an empty
	// Account. Without a signer the instruction is submitted unsigned.
	Signer string `yaml:"signer" json:"signer"`

	// Instruction holds the instruction fields, TransactionType included.
	// String values may use @references. Sequence is filled in from the
	// signer's account when left out.
	Instruction map[string]any `yaml:"instruction" json:"instruction"`

	// Expect is the result code the step must produce, if set
	Expect string `yaml:"expect" json:"expect"`
}

// batchOutcome reports one applied step.
type batchOutcome struct {
	Step     int    `json:"step"`
	Type     string `json:"type"`
	Hash     string `json:"hash,omitempty"`
	Result   string `json:"result"`
	Sequence uint64 `json:"sequence,omitempty"`
	Message  string `json:"message,omitempty"`
}

// readBatch decodes a YAML or JSON batch file.
func readBatch(path string) ([]batchStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var steps []batchStep
	if strings.EqualFold(filepath.Ext(path), ".json") {
		// keep integers exact; float64 would round ids and amounts above 2^53
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		err = decoder.Decode(&steps)
	} else {
		err = yaml.Unmarshal(data, &steps)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return steps, nil
}

// build turns a step into a signed instruction. sequence returns the next
// Sequence of an account.
func (s *batchStep) build(sequence func([32]byte) (uint64, error)) (tx.Transaction, error) {
	if len(s.Instruction) == 0 {
		return nil, fmt.Errorf("missing instruction")
	}
	fields, err := resolveRefs(s.Instruction)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	instruction, err := tx.FromJSON(raw)
	if err != nil {
		return nil, err
	}

	common := instruction.GetCommon()
	if common.Account == "" && s.Signer != "" {
		if common.Account, err = addressFromSeed(s.Signer); err != nil {
			return nil, err
		}
	}
	if _, explicit := s.Instruction["Sequence"]; !explicit {
		if account, err := common.AccountID(); err == nil {
			if common.Sequence, err = sequence(account); err != nil {
				return nil, err
			}
		}
	}

	if s.Signer == "" {
		return instruction, nil
	}
	key, err := keyFromSeed(s.Signer)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	if err := tx.Sign(instruction, key); err != nil {
		return nil, err
	}
	return instruction, nil
}

// runBatch submits steps in order and writes one line per step to out. It
// stops at the first step that cannot be built or misses its expectation.
func runBatch(ctx context.Context, svc *service.Service, steps []batchStep, out io.Writer) ([]batchOutcome, error) {
	outcomes := make([]batchOutcome, 0, len(steps))
	for i := range steps {
		step := &steps[i]
		instruction, err := step.build(svc.AccountSequence)
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := svc.Submit(ctx, instruction)
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		outcome := batchOutcome{
			Step:    i + 1,
			Type:    instruction.TxType().String(),
			Result:  result.Result.String(),
			Message: result.Message,
		}
		if result.Hash != ([32]byte{}) {
			outcome.Hash = fmt.Sprintf("%X", result.Hash)
		}
		if result.Applied {
			outcome.Sequence = result.Sequence
		}
		outcomes = append(outcomes, outcome)

		if out != nil {
			fmt.Fprintf(out, "%3d  %-28s %-24s %s\n", outcome.Step, outcome.Type, outcome.Result, outcome.Hash)
		}
		if step.Expect != "" && step.Expect != outcome.Result {
			return outcomes, fmt.Errorf("step %d: expected %s, got %s: %s", i+1, step.Expect, outcome.Result, outcome.Message)
		}
	}
	return outcomes, nil
}
