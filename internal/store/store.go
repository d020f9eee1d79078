// Package store persists the three record tables (events, anniversaries and
// holidays) as CSV files or in a SQLite database, and imports anniversaries
// from vCard address books.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

// Backend is a complete storage implementation.
type Backend interface {
	engine.Store
	engine.Flusher
	Init(ctx context.Context) error
	AppendAnniversaries(ctx context.Context, entries []*engine.Anniversary) error
	Close() error
}

var (
	_ Backend = (*CSVStore)(nil)
	_ Backend = (*SQLiteStore)(nil)
)

// Open returns the backend selected by the settings.
func Open(s config.Settings) (Backend, error) {
	slog.Debug(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyBackend, s.Backend)

	switch s.Backend {
	case config.BackendCSV:
		return NewCSVStore(s.DataDir), nil
	case config.BackendSQLite:
		return OpenSQLite(s.DatabasePath)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrBackendUnsupport, s.Backend)
	}
}
