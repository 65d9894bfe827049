// Package leveldb stores databases with goleveldb.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goProgramsd/internal/storage/database"
)

type DB struct {
	db *leveldb.DB
}

func NewDB(db *leveldb.DB) *DB {
	return &DB{db: db}
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	val, err := l.db.Get(key, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return nil, database.ErrKeyNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return nil, database.ErrDBClosed
	}
	return val, err
}

func (l *DB) Has(ctx context.Context, key []byte) (bool, error) {
	found, err := l.db.Has(key, nil)
	if errors.Is(err, leveldb.ErrClosed) {
		return false, database.ErrDBClosed
	}
	return found, err
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	return l.db.Put(key, value, &opt.WriteOptions{Sync: true})
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	return l.db.Delete(key, &opt.WriteOptions{Sync: true})
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return l.db.Write(batch, &opt.WriteOptions{Sync: true})
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	it := l.db.NewIterator(&ldb_util.Range{Start: start, Limit: end}, nil)
	return &Iterator{iter: it}, nil
}

// Iterator adapts a goleveldb iterator. Keys and values are copied because
// goleveldb reuses its buffers.
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
