package config

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/genesis"
)

// logLevels lists the levels accepted in [log] levels
var logLevels = []string{"trace", "debug", "info", "warn", "error", "critical"}

// ValidateConfig performs comprehensive validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Database.Validate(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}

	if err := config.History.Validate(); err != nil {
		return fmt.Errorf("history validation failed: %w", err)
	}

	if err := validateLog(&config.Log); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}

	if len(config.Genesis.Allocations) > 0 {
		if _, err := genesis.Changes(config.Genesis); err != nil {
			return fmt.Errorf("genesis validation failed: %w", err)
		}
	}

	return nil
}

// validateLog validates the [log] section
func validateLog(l *LogConfig) error {
	if l.Directory == "" {
		return fmt.Errorf("log directory is required")
	}
	if l.File == "" {
		return fmt.Errorf("log file is required")
	}
	if l.Size <= 0 {
		return fmt.Errorf("log size must be positive, got %d", l.Size)
	}
	if l.Count <= 0 {
		return fmt.Errorf("log count must be positive, got %d", l.Count)
	}
	for tag, level := range l.Levels {
		if !contains(logLevels, strings.ToLower(level)) {
			return fmt.Errorf("invalid log level %q for %q (valid options: %s)",
				level, tag, strings.Join(logLevels, ", "))
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
