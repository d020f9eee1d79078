package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/store"
)

func openSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "db", config.DatabaseFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *store.SQLiteStore, query string, args ...any) {
	t.Helper()
	_, err := s.DB().Exec(query, args...)
	require.NoError(t, err)
}

func TestSQLiteStore_MigrationsAreIdempotent(t *testing.T) {
	s := openSQLite(t)
	require.NoError(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()))

	for _, cat := range engine.Categories {
		recs, err := s.LoadRecords(context.Background(), cat)
		require.NoError(t, err)
		assert.Empty(t, recs)
	}
}

func TestSQLiteStore_LoadRecords(t *testing.T) {
	s := openSQLite(t)
	seed(t, s, `INSERT INTO informatii (eveniment, data, avanszile, ciclu, weekend, rosu, stare, serviciu)
		VALUES ('Rent', '2024-01-10', 7, 'lunar', 1, 2, 'indeplinit', 0)`)
	seed(t, s, `INSERT INTO sarbatori (eveniment, ziua, luna, avanszile, sarbatoare_cruce_rosie)
		VALUES ('Crăciun', 25, 'decembrie', 5, 1), ('Sânziene', 24, '6', 2, 0)`)

	ctx := context.Background()
	events, err := s.LoadRecords(ctx, engine.CategoryEvent)
	require.NoError(t, err)
	require.Len(t, events, 1)

	rent := events[0].(*engine.TimedEvent)
	assert.Equal(t, "1", rent.ID)
	assert.Equal(t, utc(2024, 1, 10), rent.BaseDate)
	assert.Equal(t, 7, rent.LeadDays)
	assert.True(t, rent.ConsiderWeekends)
	assert.False(t, rent.WorkRelated)
	assert.Equal(t, engine.StatusDone, rent.Status)
	assert.True(t, rent.StoredOccurrence.IsZero())

	holidays, err := s.LoadRecords(ctx, engine.CategoryHoliday)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, time.December, holidays[0].(*engine.Holiday).Month)
	assert.True(t, holidays[0].(*engine.Holiday).CrossHoliday)
	assert.Equal(t, time.June, holidays[1].(*engine.Holiday).Month)
	assert.False(t, holidays[1].(*engine.Holiday).CrossHoliday)
}

func TestSQLiteStore_FlushAppliesQueuedWrites(t *testing.T) {
	s := openSQLite(t)
	seed(t, s, `INSERT INTO informatii (eveniment, data, stare) VALUES ('Rent', '2024-01-10', 'indeplinit')`)

	ctx := context.Background()
	require.NoError(t, s.SaveDerivedFields(ctx, engine.CategoryEvent, "1", utc(2024, 7, 10), utc(2024, 7, 3)))
	require.NoError(t, s.SaveStatus(ctx, engine.CategoryEvent, "1", engine.StatusKeep))

	var next, status string
	require.NoError(t, s.DB().QueryRow(`SELECT data_urmatoare, stare FROM informatii WHERE id = 1`).Scan(&next, &status))
	assert.Empty(t, next, "writes wait for Flush")
	assert.Equal(t, config.StatusValueDone, status)

	require.NoError(t, s.Flush(ctx, engine.CategoryEvent))

	var notify string
	require.NoError(t, s.DB().QueryRow(`SELECT data_urmatoare, data_notificare, stare FROM informatii WHERE id = 1`).Scan(&next, &notify, &status))
	assert.Equal(t, "2024-07-10", next)
	assert.Equal(t, "2024-07-03", notify)
	assert.Equal(t, config.StatusValueKeep, status)

	recs, err := s.LoadRecords(ctx, engine.CategoryEvent)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 7, 10), recs[0].Common().StoredOccurrence)
}

func TestSQLiteStore_UnknownRecord(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	err := s.SaveStatus(ctx, engine.CategoryEvent, "abc", engine.StatusDone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrRecordNotFound)

	require.NoError(t, s.SaveStatus(ctx, engine.CategoryEvent, "42", engine.StatusDone))
	err = s.Flush(ctx, engine.CategoryEvent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrRecordNotFound)
}

func TestSQLiteStore_AppendAnniversaries(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.AppendAnniversaries(ctx, []*engine.Anniversary{
		{Meta: engine.Meta{Label: "Ana", LeadDays: 7, Recurrence: "anual"}, BirthDate: utc(1990, 6, 24)},
		{Meta: engine.Meta{Label: "Ion", UrgentDays: 1}, BirthDate: utc(1985, 2, 28)},
	}))

	recs, err := s.LoadRecords(ctx, engine.CategoryAnniversary)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Ana", recs[0].Common().Label)
	assert.Equal(t, utc(1990, 6, 24), recs[0].(*engine.Anniversary).BirthDate)
	assert.Equal(t, 1, recs[1].Common().UrgentDays)

	// The same person twice violates the unique index and rolls back.
	err = s.AppendAnniversaries(ctx, []*engine.Anniversary{
		{Meta: engine.Meta{Label: "Maria"}, BirthDate: utc(2000, 1, 1)},
		{Meta: engine.Meta{Label: "Ana"}, BirthDate: utc(1990, 6, 24)},
	})
	require.Error(t, err)
	recs, err = s.LoadRecords(ctx, engine.CategoryAnniversary)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestSQLiteStore_BuilderPass(t *testing.T) {
	s := openSQLite(t)
	seed(t, s, `INSERT INTO informatii (eveniment, data, avanszile, ciclu, stare, data_urmatoare)
		VALUES ('Rent', '2024-01-24', 5, 'lunar', 'indeplinit', '2024-05-24')`)
	seed(t, s, `INSERT INTO aniversari (eveniment, data, avanszile) VALUES ('Ana', '1990-06-24', 10)`)

	b := &engine.Builder{Store: s}
	report, err := b.Build(context.Background(), utc(2024, 6, 20), engine.Filters{ShowHolidays: true})
	require.NoError(t, err)
	require.Len(t, report.Notifications, 2)
	assert.Equal(t, 1, report.Resets)

	var next, status string
	require.NoError(t, s.DB().QueryRow(`SELECT data_urmatoare, stare FROM informatii WHERE id = 1`).Scan(&next, &status))
	assert.Equal(t, "2024-06-24", next)
	assert.Equal(t, config.StatusValueKeep, status)
}

func TestOpen_SelectsBackend(t *testing.T) {
	dir := t.TempDir()

	b, err := store.Open(config.Settings{Backend: config.BackendCSV, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &store.CSVStore{}, b)

	b, err = store.Open(config.Settings{Backend: config.BackendSQLite, DatabasePath: filepath.Join(dir, "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, b)
	require.NoError(t, b.Close())

	_, err = store.Open(config.Settings{Backend: "excel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrBackendUnsupport)
}
