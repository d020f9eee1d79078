package feed_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/feed"
	"github.com/tartampluch/go-reminder/internal/locale"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture() []engine.Notification {
	return []engine.Notification{
		{
			Category: engine.CategoryEvent,
			Record: &engine.TimedEvent{
				Meta:     engine.Meta{ID: "0", Label: "Rent", LeadDays: 3, UrgentDays: 2, Recurrence: "la 3 luni"},
				BaseDate: day(2024, 3, 24),
			},
			Evaluation: engine.Evaluation{
				NextOccurrence: day(2024, 6, 24),
				DaysRemaining:  2,
				Urgent:         true,
				InWindow:       true,
				Countdown:      engine.Countdown{Kind: engine.CountdownInTwoDays},
			},
		},
		{
			Category: engine.CategoryEvent,
			Record: &engine.TimedEvent{
				Meta:     engine.Meta{ID: "1", Label: "Tax return"},
				BaseDate: day(2024, 6, 25),
			},
			Evaluation: engine.Evaluation{NextOccurrence: day(2024, 6, 25), DaysRemaining: 3, InWindow: true},
		},
		{
			Category:   engine.CategoryAnniversary,
			Record:     &engine.Anniversary{Meta: engine.Meta{ID: "0", Label: "Ana", LeadDays: 10}, BirthDate: day(1990, 6, 26)},
			Evaluation: engine.Evaluation{NextOccurrence: day(2024, 6, 26), DaysRemaining: 4, Age: 34, InWindow: true},
		},
	}
}

func decode(t *testing.T, data []byte) *ical.Calendar {
	t.Helper()
	cal, err := ical.NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return cal
}

func TestGenerate(t *testing.T) {
	now := time.Date(2024, 6, 22, 9, 0, 0, 0, time.UTC)
	data, err := feed.Generate(fixture(), locale.New("ro"), now)
	require.NoError(t, err)

	cal := decode(t, data)
	assert.Equal(t, config.ICalProdid, cal.Props.Get(config.PropProdid).Value)

	events := cal.Events()
	require.Len(t, events, 3)

	rent := events[0]
	summary, err := rent.Props.Text(config.PropSummary)
	require.NoError(t, err)
	assert.Equal(t, "Rent", summary)
	assert.Equal(t, "20240624", rent.Props.Get(config.PropDTStart).Value)
	assert.Equal(t, config.PriorityUrgent, rent.Props.Get(config.PropPriority).Value)
	assert.Equal(t, "event", rent.Props.Get(config.PropCategories).Value)

	rule, err := rent.Props.RecurrenceRule()
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, 3, rule.Interval)

	require.Len(t, rent.Children, 1)
	assert.Equal(t, "-P3D", rent.Children[0].Props.Get(config.PropTrigger).Value)

	desc, err := rent.Props.Text(config.PropDescription)
	require.NoError(t, err)
	assert.Contains(t, desc, "Data limită: Luni, 24 iunie 2024")

	oneOff := events[1]
	assert.Nil(t, oneOff.Props.Get(config.PropPriority))
	rule, err = oneOff.Props.RecurrenceRule()
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.Empty(t, oneOff.Children, "no lead days, no alarm")

	anniv := events[2]
	rule, err = anniv.Props.RecurrenceRule()
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "anniversary", anniv.Props.Get(config.PropCategories).Value)
	assert.Equal(t, "-P10D", anniv.Children[0].Props.Get(config.PropTrigger).Value)
}

func TestGenerate_EmptyIsStub(t *testing.T) {
	data, err := feed.Generate(nil, locale.New("ro"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(data))
}

func TestUID_StableAndDistinct(t *testing.T) {
	n := fixture()
	assert.Equal(t, feed.UID(n[0]), feed.UID(n[0]))
	assert.NotEqual(t, feed.UID(n[0]), feed.UID(n[1]))

	// Same ID and label in another category is another event.
	other := n[0]
	other.Category = engine.CategoryAnniversary
	assert.NotEqual(t, feed.UID(n[0]), feed.UID(other))
	assert.Contains(t, feed.UID(n[0]), "@"+config.ICalDomain)
}

func TestTrigger(t *testing.T) {
	assert.Equal(t, "-P1D", feed.Trigger(1))
	assert.Equal(t, "-P14D", feed.Trigger(14))
}

// TestGenerate_RecurrenceFollowsEngine expands the published RRULE and checks
// every date against the engine's own stepping, including month-end clamping.
func TestGenerate_RecurrenceFollowsEngine(t *testing.T) {
	yearlyAfter := func(m time.Month, d int) func(time.Time) time.Time {
		return func(prev time.Time) time.Time {
			next, err := engine.ProjectYearly(m, d, prev.AddDate(0, 0, 1))
			require.NoError(t, err)
			return next
		}
	}
	advanceAfter := func(base time.Time, text string) func(time.Time) time.Time {
		rule, err := engine.ParseRule(text)
		require.NoError(t, err)
		return func(prev time.Time) time.Time {
			next, err := engine.Advance(base, rule, prev)
			require.NoError(t, err)
			return next
		}
	}

	tests := []struct {
		name   string
		record engine.Record
		first  time.Time
		until  time.Time
		after  func(time.Time) time.Time
	}{
		{
			name:   "MonthlyOn31st",
			record: &engine.TimedEvent{Meta: engine.Meta{ID: "0", Label: "Invoice", Recurrence: "lunar"}, BaseDate: day(2024, 1, 31)},
			first:  day(2024, 2, 29),
			until:  day(2025, 3, 1),
			after:  advanceAfter(day(2024, 1, 31), "lunar"),
		},
		{
			name:   "EveryTwoMonthsOn30th",
			record: &engine.TimedEvent{Meta: engine.Meta{ID: "1", Label: "Meter", Recurrence: "la 2 luni"}, BaseDate: day(2023, 12, 30)},
			first:  day(2024, 2, 29),
			until:  day(2025, 6, 1),
			after:  advanceAfter(day(2023, 12, 30), "la 2 luni"),
		},
		{
			name:   "MonthlyMidMonth",
			record: &engine.TimedEvent{Meta: engine.Meta{ID: "2", Label: "Rent", Recurrence: "lunar"}, BaseDate: day(2024, 1, 15)},
			first:  day(2024, 2, 15),
			until:  day(2024, 12, 1),
			after:  advanceAfter(day(2024, 1, 15), "lunar"),
		},
		{
			name:   "LeapDayAnniversary",
			record: &engine.Anniversary{Meta: engine.Meta{ID: "0", Label: "Ana"}, BirthDate: day(1992, 2, 29)},
			first:  day(2025, 2, 28),
			until:  day(2033, 1, 1),
			after:  yearlyAfter(time.February, 29),
		},
		{
			name:   "LeapDayHoliday",
			record: &engine.Holiday{Meta: engine.Meta{ID: "0", Label: "Leap"}, Day: 29, Month: time.February},
			first:  day(2025, 2, 28),
			until:  day(2033, 1, 1),
			after:  yearlyAfter(time.February, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := engine.Notification{
				Category:   tt.record.Category(),
				Record:     tt.record,
				Evaluation: engine.Evaluation{NextOccurrence: tt.first, InWindow: true},
			}
			data, err := feed.Generate([]engine.Notification{n}, locale.New("en"), tt.first)
			require.NoError(t, err)

			events := decode(t, data).Events()
			require.Len(t, events, 1)
			set, err := events[0].RecurrenceSet(time.UTC)
			require.NoError(t, err)
			require.NotNil(t, set)

			var want []time.Time
			for cur := tt.first; cur.Before(tt.until); cur = tt.after(cur) {
				want = append(want, cur)
			}
			got := set.Between(tt.first, tt.until, true)
			assert.Equal(t, want, got)
		})
	}
}
