package config

import (
	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/service"
	"github.com/bitmark-inc/logger"
	"github.com/spf13/viper"
)

// setDefaults sets every default value
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.type", "pebble")
	v.SetDefault("database.path", "data/state")
	v.SetDefault("database.cache_size", 16)
	v.SetDefault("database.cache_entries", ledger.DefaultCacheEntries)

	// History defaults
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.path", "data/history.db")
	v.SetDefault("history.dsn", "")
	v.SetDefault("history.compression", "lz4")
	v.SetDefault("history.max_open_conns", 4)
	v.SetDefault("history.default_timeout", "10s")

	// Engine defaults
	v.SetDefault("engine.reserve_per_entry", service.DefaultReservePerEntry)
	v.SetDefault("engine.skip_signature_verification", false)

	// Log defaults
	v.SetDefault("log.directory", "log")
	v.SetDefault("log.file", "programsd.log")
	v.SetDefault("log.size", 1048576)
	v.SetDefault("log.count", 10)
	v.SetDefault("log.console", false)
	v.SetDefault("log.levels", map[string]string{
		logger.DefaultTag: "info",
	})
}
