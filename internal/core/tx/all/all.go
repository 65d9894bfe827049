// Package all imports all instruction sub-packages to trigger their init() registrations.
// Import this package in the main application to ensure all instruction types are registered.
package all

import (
	_ "github.com/LeJamon/goProgramsd/internal/core/tx/escrow"
	_ "github.com/LeJamon/goProgramsd/internal/core/tx/favorites"
	_ "github.com/LeJamon/goProgramsd/internal/core/tx/system"
	_ "github.com/LeJamon/goProgramsd/internal/core/tx/token"
)
