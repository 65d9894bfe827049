package pebble

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/goProgramsd/internal/storage/database"
)

type Manager struct {
	dbs       map[string]*pebble.DB
	path      string
	cacheSize int64
	mu        sync.Mutex
}

// NewManager creates a manager storing databases under path. cacheSize is
// the block cache size in bytes; zero keeps pebble's default.
func NewManager(path string, cacheSize int64) *Manager {
	return &Manager{
		dbs:       make(map[string]*pebble.DB),
		path:      path,
		cacheSize: cacheSize,
	}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil // Already opened
	}

	dbPath := filepath.Join(m.path, name+".db")
	opts := &pebble.Options{}
	if m.cacheSize > 0 {
		cache := pebble.NewCache(m.cacheSize)
		defer cache.Unref()
		opts.Cache = cache
	}

	db, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	m.dbs[name] = db

	return NewDB(db), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", database.ErrNamespaceNotFound, name)
	}

	if err := db.Close(); err != nil {
		return err
	}

	delete(m.dbs, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
