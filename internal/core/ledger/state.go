// Package ledger holds the persistent account state that instructions run
// against.
package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/storage/database"
)

// Key prefixes inside the state database
const (
	prefixEntry byte = 'e'
	prefixMeta  byte = 'm'
)

var (
	metaSequence = []byte{prefixMeta, 's'}
	metaGenesis  = []byte{prefixMeta, 'g'}
)

// DefaultCacheEntries is the read cache size used when none is configured
const DefaultCacheEntries = 4096

var (
	// ErrAlreadyExists is returned by Insert when the slot is occupied
	ErrAlreadyExists = errors.New("entry already exists")

	// ErrNotFound is returned by Update and Erase when the slot is empty
	ErrNotFound = errors.New("entry not found")

	// ErrGenesisApplied is returned when seeding an already seeded state
	ErrGenesisApplied = errors.New("genesis already applied")
)

// State is a LedgerView over a key-value database. Reads go through an LRU
// cache; Commit lands a whole change set in one database batch.
type State struct {
	mu       sync.RWMutex
	db       database.DB
	cache    *lru.Cache[[32]byte, []byte]
	sequence uint64
	log      *logger.L
}

// NewState opens the state stored in db. cacheEntries <= 0 selects
// DefaultCacheEntries. log may be nil.
func NewState(ctx context.Context, db database.DB, cacheEntries int, log *logger.L) (*State, error) {
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	cache, err := lru.New[[32]byte, []byte](cacheEntries)
	if err != nil {
		return nil, err
	}

	s := &State{
		db:    db,
		cache: cache,
		log:   log,
	}

	raw, err := db.Read(ctx, metaSequence)
	switch {
	case errors.Is(err, database.ErrKeyNotFound):
	case err != nil:
		return nil, fmt.Errorf("read sequence: %w", err)
	case len(raw) != 8:
		return nil, fmt.Errorf("read sequence: corrupt value of %d bytes", len(raw))
	default:
		s.sequence = binary.BigEndian.Uint64(raw)
	}

	s.infof("state opened at sequence %d", s.sequence)
	return s, nil
}

func entryKey(key [32]byte) []byte {
	k := make([]byte, 0, 33)
	k = append(k, prefixEntry)
	return append(k, key[:]...)
}

// Read returns the entry at k, or nil, nil when the slot is empty
func (s *State) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(k.Key)
}

func (s *State) read(key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	data, err := s.db.Read(context.Background(), entryKey(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, data)
	return data, nil
}

// Exists reports whether slot k holds an entry
func (s *State) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	return data != nil, err
}

// Insert writes a new entry
func (s *State) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExists
	}
	return s.Commit([]tx.Change{{Key: k.Key, Action: tx.ActionInsert, Data: data}})
}

// Update overwrites an existing entry
func (s *State) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.Commit([]tx.Change{{Key: k.Key, Action: tx.ActionModify, Data: data}})
}

// Erase removes an entry
func (s *State) Erase(k keylet.Keylet) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.Commit([]tx.Change{{Key: k.Key, Action: tx.ActionErase}})
}

// Commit applies changes in one database batch. On failure nothing is
// written and the cache is left untouched.
func (s *State) Commit(changes []tx.Change) error {
	return s.commit(changes, false)
}

func (s *State) commit(changes []tx.Change, advance bool) error {
	if len(changes) == 0 && !advance {
		return nil
	}

	ops := make([]database.BatchOperation, 0, len(changes)+1)
	for _, c := range changes {
		switch c.Action {
		case tx.ActionInsert, tx.ActionModify:
			ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: entryKey(c.Key), Value: c.Data})
		case tx.ActionErase:
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: entryKey(c.Key)})
		default:
			return fmt.Errorf("unexpected change action %d", c.Action)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.sequence
	if advance {
		next++
		var raw [8]byte
		binary.BigEndian.PutUint64(raw[:], next)
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: metaSequence, Value: raw[:]})
	}

	if err := s.db.Batch(context.Background(), ops); err != nil {
		return fmt.Errorf("commit %d changes: %w", len(changes), err)
	}
	for _, c := range changes {
		if c.Action == tx.ActionErase {
			s.cache.Remove(c.Key)
		} else {
			s.cache.Add(c.Key, c.Data)
		}
	}
	s.sequence = next
	s.debugf("committed %d changes at sequence %d", len(changes), next)
	return nil
}

// Sequenced returns a view of s whose Commit also advances the instruction
// sequence, in the same database batch as the changes.
func (s *State) Sequenced() tx.LedgerView {
	return sequencedView{s}
}

type sequencedView struct {
	*State
}

func (v sequencedView) Commit(changes []tx.Change) error {
	return v.commit(changes, true)
}

// ForEach iterates over all entries in key order. If fn returns false,
// iteration stops early.
func (s *State) ForEach(fn func(key [32]byte, data []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.db.Iterator(context.Background(), []byte{prefixEntry}, []byte{prefixEntry + 1})
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		raw := it.Key()
		if len(raw) != 33 {
			continue
		}
		var key [32]byte
		copy(key[:], raw[1:])
		if !fn(key, it.Value()) {
			break
		}
	}
	return it.Error()
}

// Sequence returns the sequence of the last applied instruction
func (s *State) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence
}

// Seeded reports whether a genesis change set has been applied
func (s *State) Seeded(ctx context.Context) (bool, error) {
	return s.db.Has(ctx, metaGenesis)
}

// Seed applies a genesis change set together with the genesis marker. It
// fails with ErrGenesisApplied if the state was seeded before.
func (s *State) Seed(ctx context.Context, changes []tx.Change) error {
	seeded, err := s.Seeded(ctx)
	if err != nil {
		return err
	}
	if seeded {
		return ErrGenesisApplied
	}

	ops := make([]database.BatchOperation, 0, len(changes)+1)
	for _, c := range changes {
		if c.Action != tx.ActionInsert {
			return fmt.Errorf("genesis change for %X is not an insert", c.Key)
		}
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: entryKey(c.Key), Value: c.Data})
	}
	ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: metaGenesis, Value: []byte{1}})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	for _, c := range changes {
		s.cache.Add(c.Key, c.Data)
	}
	s.infof("genesis applied with %d entries", len(changes))
	return nil
}

func (s *State) infof(format string, arguments ...interface{}) {
	if s.log != nil {
		s.log.Infof(format, arguments...)
	}
}

func (s *State) debugf(format string, arguments ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, arguments...)
	}
}

var (
	_ tx.LedgerView = (*State)(nil)
	_ tx.Committer  = (*State)(nil)
	_ tx.Committer  = sequencedView{}
)
