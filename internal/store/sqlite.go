package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// openDB opens sqlite with a single connection and a busy timeout.
func openDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	return db, nil
}

// withTx runs fn in a transaction.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// migrateDB applies the embedded migrations on a dedicated connection,
// since closing the migrator closes its database.
func migrateDB(path string) error {
	db, err := openDB(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrMigration, err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: %w", config.ErrMigration, err)
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: %w", config.ErrMigration, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: %w", config.ErrMigration, err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", config.ErrMigration, err)
	}
	slog.Debug(config.MsgMigrated,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyFile, path)
	return nil
}

// SQLiteStore keeps the three tables in one database. Record IDs are row ids.
// Writes are queued per category and applied in one transaction on Flush.
type SQLiteStore struct {
	path string
	db   *sql.DB

	mu      sync.Mutex
	pending map[engine.Category][]sqlWrite
}

type sqlWrite struct {
	id    string
	cells map[string]string
}

// OpenSQLite opens (creating if needed) and migrates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatabaseOpen, err)
	}
	if err := migrateDB(path); err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatabaseOpen, err)
	}
	return &SQLiteStore{path: path, db: db, pending: make(map[engine.Category][]sqlWrite)}, nil
}

// Init brings the schema up to date.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return migrateDB(s.path)
}

// LoadRecords reads a table in id order, discarding unflushed writes.
func (s *SQLiteStore) LoadRecords(ctx context.Context, cat engine.Category) ([]engine.Record, error) {
	cols := columns(cat)
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(cols, ", "), cat.Table())

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", config.ErrTableRead, cat.Table(), err)
	}
	defer func() { _ = rows.Close() }()

	var records []engine.Record
	for rows.Next() {
		var id int64
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, 0, len(cols)+1)
		dest = append(dest, &id)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrTableRead, cat.Table(), err)
		}

		byCol := make(map[string]string, len(cols))
		for i, col := range cols {
			byCol[col] = cells[i].String
		}
		records = append(records, decodeRecord(cat, strconv.FormatInt(id, 10), func(col string) string {
			return byCol[col]
		}))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", config.ErrTableRead, cat.Table(), err)
	}

	s.mu.Lock()
	delete(s.pending, cat)
	s.mu.Unlock()
	return records, nil
}

// SaveDerivedFields queues the next occurrence and notification start of a row.
func (s *SQLiteStore) SaveDerivedFields(ctx context.Context, cat engine.Category, id string, next, start time.Time) error {
	return s.queue(ctx, cat, id, map[string]string{
		config.ColNextDate:   next.Format(config.DateFormatFullDash),
		config.ColNotifyDate: start.Format(config.DateFormatFullDash),
	})
}

// SaveStatus queues a status change of a row.
func (s *SQLiteStore) SaveStatus(ctx context.Context, cat engine.Category, id string, status engine.Status) error {
	return s.queue(ctx, cat, id, map[string]string{config.ColStatus: statusValue(status)})
}

func (s *SQLiteStore) queue(ctx context.Context, cat engine.Category, id string, cells map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return fmt.Errorf("%s: %s #%s", config.ErrRecordNotFound, cat, id)
	}
	s.mu.Lock()
	s.pending[cat] = append(s.pending[cat], sqlWrite{id: id, cells: cells})
	s.mu.Unlock()
	return nil
}

// Flush applies the queued writes of cat in a single transaction.
func (s *SQLiteStore) Flush(ctx context.Context, cat engine.Category) error {
	s.mu.Lock()
	writes := s.pending[cat]
	delete(s.pending, cat)
	s.mu.Unlock()
	if len(writes) == 0 {
		return nil
	}

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, w := range writes {
			sets := make([]string, 0, len(w.cells))
			args := make([]any, 0, len(w.cells)+1)
			for col, v := range w.cells {
				sets = append(sets, col+" = ?")
				args = append(args, v)
			}
			args = append(args, w.id)

			query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", cat.Table(), strings.Join(sets, ", "))
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("%s: %s #%s", config.ErrRecordNotFound, cat, w.id)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", config.ErrTableWrite, cat.Table(), err)
	}
	return nil
}

// AppendAnniversaries inserts new anniversaries.
func (s *SQLiteStore) AppendAnniversaries(ctx context.Context, entries []*engine.Anniversary) error {
	if len(entries) == 0 {
		return nil
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?)",
		config.TableAnniversaries,
		config.ColLabel, config.ColDate, config.ColLeadDays, config.ColRecurrence,
		config.ColUrgentDays, config.ColStatus, config.ColNotes,
	)
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, a := range entries {
			if _, err := tx.ExecContext(ctx, query,
				a.Label,
				a.BirthDate.Format(config.DateFormatFullDash),
				a.LeadDays,
				a.Recurrence,
				a.UrgentDays,
				statusValue(a.Status),
				a.Notes,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", config.ErrTableWrite, config.TableAnniversaries, err)
	}
	return nil
}

// DB exposes the underlying handle, mainly for seeding in tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
