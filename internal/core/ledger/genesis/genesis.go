// Package genesis builds the initial state: one system account per
// configured allocation.
package genesis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

var (
	ErrNoAllocations     = errors.New("genesis has no allocations")
	ErrDuplicateAccount  = errors.New("account allocated twice")
	ErrInvalidAllocation = errors.New("invalid allocation")
)

// Allocation funds one identity with native lamports.
type Allocation struct {
	Account  string `mapstructure:"account" yaml:"account"`
	Lamports uint64 `mapstructure:"lamports" yaml:"lamports"`
}

// Config is the genesis allocation table.
type Config struct {
	Allocations []Allocation `mapstructure:"allocations" yaml:"allocations"`
}

// Changes returns the insert set for cfg, ordered by account key.
func Changes(cfg Config) ([]tx.Change, error) {
	if len(cfg.Allocations) == 0 {
		return nil, ErrNoAllocations
	}

	seen := make(map[[32]byte]struct{}, len(cfg.Allocations))
	changes := make([]tx.Change, 0, len(cfg.Allocations))
	for i, a := range cfg.Allocations {
		id, err := addresscodec.Decode(a.Account)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidAllocation, i, err)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, a.Account)
		}
		seen[id] = struct{}{}

		data, err := sle.Serialize(&sle.SystemAccount{Account: id, Lamports: a.Lamports})
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidAllocation, i, err)
		}
		changes = append(changes, tx.Change{
			Key:    keylet.System(id).Key,
			Action: tx.ActionInsert,
			Data:   data,
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		return string(changes[i].Key[:]) < string(changes[j].Key[:])
	})
	return changes, nil
}

// Apply seeds state with cfg. A state that was already seeded is left as is
// and Apply reports false.
func Apply(ctx context.Context, state *ledger.State, cfg Config) (bool, error) {
	seeded, err := state.Seeded(ctx)
	if err != nil {
		return false, err
	}
	if seeded {
		return false, nil
	}

	changes, err := Changes(cfg)
	if err != nil {
		return false, err
	}
	if err := state.Seed(ctx, changes); err != nil {
		return false, err
	}
	return true, nil
}
