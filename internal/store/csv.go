package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

// CSVStore keeps each category in <Dir>/<table>.csv with a header row.
// Record IDs are zero-based row indices. Writes are buffered until Flush.
type CSVStore struct {
	Dir string

	mu     sync.Mutex
	tables map[engine.Category]*csvTable
}

type csvTable struct {
	header []string
	index  map[string]int
	rows   [][]string
	dirty  bool
}

// NewCSVStore returns a store rooted at dir.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Dir: dir, tables: make(map[engine.Category]*csvTable)}
}

func (s *CSVStore) path(cat engine.Category) string {
	return filepath.Join(s.Dir, cat.Table()+config.ExtCSV)
}

// Init creates the data directory and any missing table with its header.
func (s *CSVStore) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.Dir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	for _, cat := range engine.Categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := s.path(cat)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", config.ErrTableRead, err)
		}

		t := &csvTable{header: append([]string(nil), columns(cat)...)}
		if err := writeCSV(path, t); err != nil {
			return err
		}
		slog.Info(config.MsgTableCreated,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyFile, path)
	}
	return nil
}

// LoadRecords reads the table from disk, discarding unflushed writes.
func (s *CSVStore) LoadRecords(ctx context.Context, cat engine.Category) ([]engine.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := readCSV(s.path(cat), cat)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tables[cat] = t
	s.mu.Unlock()

	records := make([]engine.Record, 0, len(t.rows))
	for i, row := range t.rows {
		records = append(records, decodeRecord(cat, strconv.Itoa(i), func(col string) string {
			return row[t.index[col]]
		}))
	}
	return records, nil
}

// SaveDerivedFields buffers the next occurrence and notification start of a row.
func (s *CSVStore) SaveDerivedFields(ctx context.Context, cat engine.Category, id string, next, start time.Time) error {
	return s.update(ctx, cat, id, map[string]string{
		config.ColNextDate:   next.Format(config.DateLayout),
		config.ColNotifyDate: start.Format(config.DateLayout),
	})
}

// SaveStatus buffers a status change of a row.
func (s *CSVStore) SaveStatus(ctx context.Context, cat engine.Category, id string, status engine.Status) error {
	return s.update(ctx, cat, id, map[string]string{config.ColStatus: statusValue(status)})
}

func (s *CSVStore) update(ctx context.Context, cat engine.Category, id string, cells map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t, err := s.loaded(cat)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := strconv.Atoi(id)
	if err != nil || i < 0 || i >= len(t.rows) {
		return fmt.Errorf("%s: %s #%s", config.ErrRecordNotFound, cat, id)
	}
	for col, v := range cells {
		pos := t.index[col]
		if t.rows[i][pos] != v {
			t.rows[i][pos] = v
			t.dirty = true
		}
	}
	return nil
}

// loaded returns the cached table, reading it on first use.
func (s *CSVStore) loaded(cat engine.Category) (*csvTable, error) {
	s.mu.Lock()
	t, ok := s.tables[cat]
	s.mu.Unlock()
	if ok {
		return t, nil
	}

	t, err := readCSV(s.path(cat), cat)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.tables[cat] = t
	s.mu.Unlock()
	return t, nil
}

// Flush writes the buffered changes of cat, if any.
func (s *CSVStore) Flush(ctx context.Context, cat engine.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[cat]
	if !ok || !t.dirty {
		return nil
	}
	if err := writeCSV(s.path(cat), t); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// AppendAnniversaries adds rows to the anniversaries table and writes it.
func (s *CSVStore) AppendAnniversaries(ctx context.Context, entries []*engine.Anniversary) error {
	if len(entries) == 0 {
		return nil
	}
	t, err := s.loaded(engine.CategoryAnniversary)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for _, a := range entries {
		cells := encodeRecord(a)
		row := make([]string, len(t.header))
		for col, v := range cells {
			if pos, ok := t.index[col]; ok {
				row[pos] = v
			}
		}
		t.rows = append(t.rows, row)
	}
	t.dirty = true
	s.mu.Unlock()

	return s.Flush(ctx, engine.CategoryAnniversary)
}

// Close releases nothing; tables are written on Flush.
func (s *CSVStore) Close() error { return nil }

// readCSV loads a table, appending absent optional columns.
func readCSV(path string, cat engine.Category) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", config.ErrTableRead, cat.Table(), err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", config.ErrTableRead, cat.Table(), err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s %s: %v", config.ErrTableHeader, cat.Table(), requiredColumns[cat])
	}

	t := &csvTable{header: all[0], index: make(map[string]int, len(all[0]))}
	for i, col := range t.header {
		t.index[col] = i
	}
	for _, col := range requiredColumns[cat] {
		if _, ok := t.index[col]; !ok {
			return nil, fmt.Errorf("%s %s: %s", config.ErrTableHeader, cat.Table(), col)
		}
	}
	for _, col := range columns(cat) {
		if _, ok := t.index[col]; !ok {
			t.index[col] = len(t.header)
			t.header = append(t.header, col)
		}
	}

	for i, rec := range all[1:] {
		// Blank trailing cells are dropped; any data past the header would be
		// lost on the next Flush, so such a table is rejected.
		for _, cell := range rec[min(len(rec), len(t.header)):] {
			if strings.TrimSpace(cell) != "" {
				return nil, fmt.Errorf("%s %s: %s %d", config.ErrTableRead, cat.Table(), config.ErrRowTooWide, i+1)
			}
		}
		row := make([]string, len(t.header))
		copy(row, rec)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// writeCSV replaces path atomically with the table content.
func writeCSV(path string, t *csvTable) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".go-reminder-table-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(t.header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	if err := w.WriteAll(t.rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	if err := os.Chmod(tmpName, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", config.ErrTableWrite, err)
	}
	return nil
}
