package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/store"
)

func writeTable(t *testing.T, dir, table, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, table+config.ExtCSV), []byte(content), 0o600))
}

func readTable(t *testing.T, dir, table string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, table+config.ExtCSV))
	require.NoError(t, err)
	return string(data)
}

func TestCSVStore_Init(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := store.NewCSVStore(dir)

	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, strings.Join(config.EventColumns, ",")+"\n", readTable(t, dir, config.TableEvents))
	assert.Equal(t, strings.Join(config.HolidayColumns, ",")+"\n", readTable(t, dir, config.TableHolidays))

	// Existing tables are left alone.
	writeTable(t, dir, config.TableEvents, "eveniment,data\nRent,10-01-2024\n")
	require.NoError(t, s.Init(context.Background()))
	assert.Contains(t, readTable(t, dir, config.TableEvents), "Rent")

	for _, cat := range engine.Categories {
		recs, err := s.LoadRecords(context.Background(), cat)
		require.NoError(t, err)
		if cat != engine.CategoryEvent {
			assert.Empty(t, recs)
		}
	}
}

func TestCSVStore_LoadEvents(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, config.TableEvents, strings.Join([]string{
		"eveniment,data,avanszile,ciclu,weekend,rosu,stare,serviciu,observatii,data_urmatoare",
		"Rent,10-01-2024,7.0,lunar,True,2,indeplinit,False,nan,10-06-2024",
		"Standup,2024-06-21,x,,False,,,True,room 4,",
		"Broken,,3,,,,,,,",
	}, "\n")+"\n")

	recs, err := store.NewCSVStore(dir).LoadRecords(context.Background(), engine.CategoryEvent)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	rent := recs[0].(*engine.TimedEvent)
	assert.Equal(t, "0", rent.ID)
	assert.Equal(t, "Rent", rent.Label)
	assert.Equal(t, utc(2024, 1, 10), rent.BaseDate)
	assert.Equal(t, 7, rent.LeadDays, "float cells are truncated")
	assert.Equal(t, 2, rent.UrgentDays)
	assert.Equal(t, "lunar", rent.Recurrence)
	assert.True(t, rent.ConsiderWeekends)
	assert.False(t, rent.WorkRelated)
	assert.Equal(t, engine.StatusDone, rent.Status)
	assert.Empty(t, rent.Notes, "nan is blank")
	assert.Equal(t, utc(2024, 6, 10), rent.StoredOccurrence)

	standup := recs[1].(*engine.TimedEvent)
	assert.Equal(t, "1", standup.ID)
	assert.Equal(t, utc(2024, 6, 21), standup.BaseDate, "ISO dates are accepted")
	assert.Zero(t, standup.LeadDays, "malformed numbers coerce to zero")
	assert.True(t, standup.WorkRelated)
	assert.Equal(t, engine.StatusKeep, standup.Status)
	assert.Equal(t, "room 4", standup.Notes)

	assert.True(t, recs[2].(*engine.TimedEvent).BaseDate.IsZero())
}

func TestCSVStore_LoadHolidays(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, config.TableHolidays, strings.Join([]string{
		"eveniment,ziua,luna,avanszile,tip,sarbatoare_cruce_rosie",
		"Crăciun,25,Decembrie,5,religioasă,sărbătoare cu cruce roșie",
		"Sânziene,24,iun,2,populară,",
		"Ziua X,1,Xyzzy,1,,",
	}, "\n")+"\n")

	recs, err := store.NewCSVStore(dir).LoadRecords(context.Background(), engine.CategoryHoliday)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	xmas := recs[0].(*engine.Holiday)
	assert.Equal(t, 25, xmas.Day)
	assert.Equal(t, time.December, xmas.Month)
	assert.True(t, xmas.CrossHoliday)
	assert.Equal(t, "religioasă", xmas.Kind)

	assert.Equal(t, time.June, recs[1].(*engine.Holiday).Month)
	assert.False(t, recs[1].(*engine.Holiday).CrossHoliday)
	assert.Zero(t, recs[2].(*engine.Holiday).Month, "unknown month is left unset")
}

func TestCSVStore_MissingRequiredColumn(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, config.TableAnniversaries, "eveniment,avanszile\nAna,3\n")

	_, err := store.NewCSVStore(dir).LoadRecords(context.Background(), engine.CategoryAnniversary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTableHeader)
}

func TestCSVStore_RowWiderThanHeader(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr bool
	}{
		{"ExtraData", "Rent,10-01-2024,indeplinit,bank transfer", true},
		{"BlankTrailingCells", "Rent,10-01-2024,indeplinit,, ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTable(t, dir, config.TableEvents, "eveniment,data,stare\n"+tt.row+"\n")

			recs, err := store.NewCSVStore(dir).LoadRecords(context.Background(), engine.CategoryEvent)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), config.ErrRowTooWide)
				return
			}
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, "Rent", recs[0].Common().Label)
		})
	}
}

func TestCSVStore_MissingTable(t *testing.T) {
	_, err := store.NewCSVStore(t.TempDir()).LoadRecords(context.Background(), engine.CategoryEvent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTableRead)
}

func TestCSVStore_WritesAreBufferedUntilFlush(t *testing.T) {
	dir := t.TempDir()
	original := "eveniment,data,stare\nRent,10-01-2024,indeplinit\n"
	writeTable(t, dir, config.TableEvents, original)

	s := store.NewCSVStore(dir)
	ctx := context.Background()
	_, err := s.LoadRecords(ctx, engine.CategoryEvent)
	require.NoError(t, err)

	require.NoError(t, s.SaveDerivedFields(ctx, engine.CategoryEvent, "0", utc(2024, 7, 10), utc(2024, 7, 3)))
	require.NoError(t, s.SaveStatus(ctx, engine.CategoryEvent, "0", engine.StatusKeep))
	assert.Equal(t, original, readTable(t, dir, config.TableEvents))

	require.NoError(t, s.Flush(ctx, engine.CategoryEvent))
	got := readTable(t, dir, config.TableEvents)
	assert.Contains(t, got, "eveniment,data,stare,avanszile")
	assert.Contains(t, got, "Rent,10-01-2024,pastreaza")
	assert.Contains(t, got, "03-07-2024,10-07-2024")

	info, err := os.Stat(filepath.Join(dir, config.TableEvents+config.ExtCSV))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	recs, err := s.LoadRecords(ctx, engine.CategoryEvent)
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 7, 10), recs[0].Common().StoredOccurrence)
	assert.Equal(t, engine.StatusKeep, recs[0].Common().Status)
}

func TestCSVStore_SaveStatusWithoutPriorLoad(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, config.TableAnniversaries, "eveniment,data\nAna,24-06-1990\n")

	s := store.NewCSVStore(dir)
	ctx := context.Background()
	require.NoError(t, s.SaveStatus(ctx, engine.CategoryAnniversary, "0", engine.StatusDone))
	require.NoError(t, s.Flush(ctx, engine.CategoryAnniversary))
	assert.Contains(t, readTable(t, dir, config.TableAnniversaries), "indeplinit")

	err := s.SaveStatus(ctx, engine.CategoryAnniversary, "7", engine.StatusDone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrRecordNotFound)
}

func TestCSVStore_AppendAnniversaries(t *testing.T) {
	dir := t.TempDir()
	s := store.NewCSVStore(dir)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	require.NoError(t, s.AppendAnniversaries(ctx, []*engine.Anniversary{
		{Meta: engine.Meta{Label: "Ana", LeadDays: 7, UrgentDays: 1, Recurrence: "anual"}, BirthDate: utc(1990, 6, 24)},
	}))

	recs, err := s.LoadRecords(ctx, engine.CategoryAnniversary)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	a := recs[0].(*engine.Anniversary)
	assert.Equal(t, "Ana", a.Label)
	assert.Equal(t, utc(1990, 6, 24), a.BirthDate)
	assert.Equal(t, 7, a.LeadDays)
	assert.Equal(t, engine.StatusKeep, a.Status)
}

func TestCSVStore_BuilderPass(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, config.TableEvents, "eveniment,data,avanszile,ciclu,stare,data_urmatoare\nRent,24-01-2024,5,lunar,indeplinit,24-05-2024\n")
	writeTable(t, dir, config.TableAnniversaries, "eveniment,data,avanszile\nAna,24-06-1990,10\n")
	writeTable(t, dir, config.TableHolidays, "eveniment,ziua,luna,avanszile\nSânziene,24,iunie,7\n")

	b := &engine.Builder{Store: store.NewCSVStore(dir)}
	report, err := b.Build(context.Background(), utc(2024, 6, 20), engine.Filters{ShowHolidays: true})
	require.NoError(t, err)
	require.Len(t, report.Notifications, 3)
	assert.Equal(t, 1, report.Resets)

	events := readTable(t, dir, config.TableEvents)
	assert.Contains(t, events, "pastreaza")
	assert.Contains(t, events, "24-06-2024")
	assert.Contains(t, readTable(t, dir, config.TableHolidays), "17-06-2024,24-06-2024")
}
