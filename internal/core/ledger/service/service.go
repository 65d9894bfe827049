// Package service wraps the instruction engine around persistent state. It
// serialises submissions, records history and answers state queries.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/genesis"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

// DefaultReservePerEntry is the lamport reserve locked by each created entry
const DefaultReservePerEntry = 1_000_000

// Common errors
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoHistory  = errors.New("instruction history is not configured")
)

// Config holds configuration for the Service
type Config struct {
	// ReservePerEntry is locked from the payer for every created entry
	ReservePerEntry uint64

	// SkipSignatureVerification accepts unsigned instructions
	SkipSignatureVerification bool

	// Genesis seeds an empty state on Start. Ignored when it has no allocations.
	Genesis genesis.Config
}

// DefaultConfig returns the default service configuration
func DefaultConfig() Config {
	return Config{
		ReservePerEntry: DefaultReservePerEntry,
	}
}

// Service applies instructions to a State one at a time
type Service struct {
	mu sync.RWMutex

	config  Config
	state   *ledger.State
	history relationaldb.Repository // nil when history is disabled
	hooks   *Hooks
	log     *logger.L
	started bool
}

// New creates a Service over state. history and log may be nil.
func New(cfg Config, state *ledger.State, history relationaldb.Repository, log *logger.L) *Service {
	return &Service{
		config:  cfg,
		state:   state,
		history: history,
		log:     log,
	}
}

// Start seeds the genesis allocations into an empty state
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.config.Genesis.Allocations) > 0 {
		applied, err := genesis.Apply(ctx, s.state, s.config.Genesis)
		if err != nil {
			return fmt.Errorf("apply genesis: %w", err)
		}
		if applied {
			s.infof("genesis seeded %d accounts", len(s.config.Genesis.Allocations))
		}
	}

	if s.history != nil {
		last, err := s.history.LastSequence(ctx)
		if err != nil {
			return fmt.Errorf("read history sequence: %w", err)
		}
		if last > s.state.Sequence() {
			s.warnf("history is ahead of state: history %d, state %d", last, s.state.Sequence())
		}
	}

	s.started = true
	s.infof("service started at sequence %d", s.state.Sequence())
	return nil
}

// SetHooks installs event hooks. Pass nil to remove them.
func (s *Service) SetHooks(hooks *Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = hooks
}

// SubmitResult is the outcome of one submission
type SubmitResult struct {
	tx.ApplyResult

	// Sequence is the instruction sequence; zero if nothing was applied
	Sequence uint64
}

// Submit applies one instruction. The returned error reports service
// failures only; instruction failures are carried in the result and
// through SubmitResult.Err.
func (s *Service) Submit(ctx context.Context, instruction tx.Transaction) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	sequence := s.state.Sequence() + 1
	engine := tx.NewEngine(s.state.Sequenced(), tx.EngineConfig{
		ReservePerEntry:           s.config.ReservePerEntry,
		Sequence:                  sequence,
		SkipSignatureVerification: s.config.SkipSignatureVerification,
		Log:                       s.log,
	})

	applied := engine.Apply(instruction)
	result := &SubmitResult{ApplyResult: applied}

	if !applied.Applied {
		s.debugf("%s by %s rejected: %s", instruction.TxType(), instruction.GetCommon().Account, applied.Result)
		return result, nil
	}

	// the commit advanced the state sequence in the same batch
	result.Sequence = sequence
	s.infof("%s by %s applied at sequence %d", instruction.TxType(), instruction.GetCommon().Account, sequence)

	if err := s.record(ctx, instruction, result); err != nil {
		s.warnf("history for %X not recorded: %s", applied.Hash, err)
	}
	s.publish(instruction, result)

	return result, nil
}

// Sequence returns the sequence of the last applied instruction
func (s *Service) Sequence() uint64 {
	return s.state.Sequence()
}

func (s *Service) infof(format string, arguments ...interface{}) {
	if s.log != nil {
		s.log.Infof(format, arguments...)
	}
}

func (s *Service) debugf(format string, arguments ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, arguments...)
	}
}

func (s *Service) warnf(format string, arguments ...interface{}) {
	if s.log != nil {
		s.log.Warnf(format, arguments...)
	}
}
