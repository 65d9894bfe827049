// Package memory keeps databases in process memory on top of goleveldb's
// sorted memdb. Nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goProgramsd/internal/storage/database"
)

type DB struct {
	mu     sync.RWMutex
	db     *memdb.DB
	closed bool
}

func NewDB() *DB {
	return &DB{db: memdb.New(comparer.DefaultComparer, 0)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, database.ErrDBClosed
	}
	val, err := m.db.Get(key)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), val...), nil
}

func (m *DB) Has(ctx context.Context, key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, database.ErrDBClosed
	}
	return m.db.Contains(key), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	return m.Batch(ctx, []database.BatchOperation{{Type: database.BatchPut, Key: key, Value: value}})
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	return m.Batch(ctx, []database.BatchOperation{{Type: database.BatchDelete, Key: key}})
}

// Batch validates every operation before touching the table so a bad
// operation leaves the contents unchanged.
func (m *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return database.ErrDBClosed
	}
	for _, op := range ops {
		var err error
		if op.Type == database.BatchPut {
			err = m.db.Put(op.Key, op.Value)
		} else {
			err = m.db.Delete(op.Key)
			if errors.Is(err, memdb.ErrNotFound) {
				err = nil
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Iterator walks a snapshot of the range taken when it is created.
func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, database.ErrDBClosed
	}

	snapshot := memdb.New(comparer.DefaultComparer, 0)
	it := m.db.NewIterator(&ldb_util.Range{Start: start, Limit: end})
	defer it.Release()
	for it.Next() {
		if err := snapshot.Put(it.Key(), it.Value()); err != nil {
			return nil, err
		}
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	return &Iterator{iter: snapshot.NewIterator(nil)}, nil
}

func (m *DB) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.db.Reset()
}

type Iterator struct {
	iter iterator.Iterator
}

func (it *Iterator) Next() bool {
	return it.iter.Next()
}

func (it *Iterator) Key() []byte {
	return append([]byte(nil), it.iter.Key()...)
}

func (it *Iterator) Value() []byte {
	return append([]byte(nil), it.iter.Value()...)
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
