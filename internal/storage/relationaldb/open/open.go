// Package open selects the history repository implementation by driver.
package open

import (
	"context"

	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb/postgres"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb/sqlite"
)

// Repository opens the repository cfg names. The "none" driver yields a nil
// repository and no error: history is disabled.
func Repository(ctx context.Context, cfg *relationaldb.Config) (relationaldb.Repository, error) {
	switch cfg.Driver {
	case relationaldb.DriverNone:
		return nil, nil
	case relationaldb.DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case relationaldb.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, relationaldb.NewConfigurationError("open", "unsupported driver "+cfg.Driver, relationaldb.ErrInvalidDriver)
	}
}
