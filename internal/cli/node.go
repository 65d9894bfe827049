package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/LeJamon/goProgramsd/internal/config"
	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/service"
	"github.com/LeJamon/goProgramsd/internal/logging"
	"github.com/LeJamon/goProgramsd/internal/storage/database"
	dbopen "github.com/LeJamon/goProgramsd/internal/storage/database/open"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
	relopen "github.com/LeJamon/goProgramsd/internal/storage/relationaldb/open"
)

// stateDBName is the database holding ledger entries under [database] path
const stateDBName = "state"

// node is an opened state, history and service for one command.
type node struct {
	config  *config.Config
	manager database.Manager
	history relationaldb.Repository
	service *service.Service
	log     *logger.L
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		paths := config.DefaultConfigPaths()
		paths.Env = envFile
		if _, err := os.Stat(paths.Main); os.IsNotExist(err) {
			paths.Main = ""
		}
		return config.LoadConfig(paths)
	}
	return config.LoadConfig(config.ConfigPaths{Main: configFile, Env: envFile})
}

// openNode loads the configuration, starts logging and opens storage. The
// caller must Close the node.
func openNode(ctx context.Context) (*node, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Console = true
		cfg.Log.Levels = map[string]string{logger.DefaultTag: "debug"}
	}
	if err := logging.Initialise(cfg.Log); err != nil {
		return nil, err
	}

	n := &node{config: cfg, log: logger.New("programsd")}
	n.log.Infof("config: %s, database: %s at %s, history: %s",
		cfg.GetConfigPath(), cfg.Database.Type, cfg.Database.Path, cfg.History.Driver)

	if err := n.open(ctx); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) open(ctx context.Context) error {
	cfg := n.config

	manager, err := dbopen.NewManager(cfg.Database.Type, cfg.Database.Path, cfg.Database.CacheSize)
	if err != nil {
		return err
	}
	n.manager = manager

	db, err := manager.OpenDB(stateDBName)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}

	state, err := ledger.NewState(ctx, db, cfg.Database.CacheEntries, logger.New("state"))
	if err != nil {
		return err
	}

	historyConfig := cfg.History.Relational()
	if historyConfig.Driver == relationaldb.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(historyConfig.Path), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	n.history, err = relopen.Repository(ctx, historyConfig)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}

	n.service = service.New(service.Config{
		ReservePerEntry:           cfg.Engine.ReservePerEntry,
		SkipSignatureVerification: cfg.Engine.SkipSignatureVerification,
		Genesis:                   cfg.Genesis,
	}, state, n.history, logger.New("service"))

	return n.service.Start(ctx)
}

// Close releases storage and flushes the logs.
func (n *node) Close() error {
	var errs []error
	if n.history != nil {
		errs = append(errs, n.history.Close())
	}
	if n.manager != nil {
		errs = append(errs, n.manager.Close())
	}
	n.log.Info("closed")
	logging.Finalise()
	return errors.Join(errs...)
}

// withNode runs fn against an opened node.
func withNode(ctx context.Context, fn func(*node) error) (err error) {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := n.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(n)
}
