// Package logging starts and stops the process-wide tagged loggers.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/LeJamon/goProgramsd/internal/config"
	"github.com/bitmark-inc/logger"
)

// Initialise creates the log directory and starts logging with cfg. It must
// run before any logger.New call.
func Initialise(cfg config.LogConfig) error {
	dir, err := filepath.Abs(filepath.Clean(cfg.Directory))
	if err != nil {
		return fmt.Errorf("log directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	levels := cfg.Levels
	if len(levels) == 0 {
		levels = map[string]string{logger.DefaultTag: "info"}
	}

	return logger.Initialise(logger.Configuration{
		Directory: dir,
		File:      cfg.File,
		Size:      cfg.Size,
		Count:     cfg.Count,
		Console:   cfg.Console,
		Levels:    levels,
	})
}

// Finalise flushes and closes the log files.
func Finalise() {
	logger.Finalise()
}
