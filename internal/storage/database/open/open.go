// Package open selects a database backend by name.
package open

import (
	"fmt"
	"os"

	"github.com/LeJamon/goProgramsd/internal/storage/database"
	"github.com/LeJamon/goProgramsd/internal/storage/database/bbolt"
	"github.com/LeJamon/goProgramsd/internal/storage/database/leveldb"
	"github.com/LeJamon/goProgramsd/internal/storage/database/memory"
	"github.com/LeJamon/goProgramsd/internal/storage/database/pebble"
)

// Backend names accepted by NewManager
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendBBolt   = "bbolt"
	BackendMemory  = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{BackendPebble, BackendLevelDB, BackendBBolt, BackendMemory}

// NewManager returns a manager for backend rooted at path. cacheSizeMB sizes
// the block cache of backends that have one.
func NewManager(backend, path string, cacheSizeMB int) (database.Manager, error) {
	if backend != BackendMemory {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	cacheBytes := cacheSizeMB * 1024 * 1024
	switch backend {
	case BackendPebble:
		return pebble.NewManager(path, int64(cacheBytes)), nil
	case BackendLevelDB:
		return leveldb.NewManager(path, cacheBytes), nil
	case BackendBBolt:
		return bbolt.NewManager(path), nil
	case BackendMemory:
		return memory.NewManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
}
