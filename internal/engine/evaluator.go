package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-reminder/internal/calendar"
	"github.com/tartampluch/go-reminder/internal/config"
)

// Evaluation holds the values derived for one record on one day.
type Evaluation struct {
	NextOccurrence    time.Time
	NotificationStart time.Time
	DaysRemaining     int
	Urgent            bool
	InWindow          bool
	StatusShouldReset bool

	// Status is the record status once a pending reset is applied.
	Status Status

	// Age is the age reached at NextOccurrence (anniversaries only).
	Age int

	Countdown Countdown
}

// Evaluate computes the next occurrence of rec relative to today and the
// notification values that follow from it. It never mutates rec.
func Evaluate(rec Record, today time.Time) (Evaluation, error) {
	today = calendar.Day(today)
	meta := rec.Common()

	var (
		next    time.Time
		base    time.Time
		recurs  bool
		err     error
		weekend bool
	)

	switch r := rec.(type) {
	case *TimedEvent:
		if r.BaseDate.IsZero() {
			return Evaluation{}, fmt.Errorf("%w: %s", ErrInvalidBaseDate, meta.Label)
		}
		base = calendar.Day(r.BaseDate)
		weekend = r.ConsiderWeekends

		rule, ruleErr := ParseRule(meta.Recurrence)
		if ruleErr != nil {
			slog.Warn(config.MsgMalformedRule,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyRecordID, meta.ID,
				config.LogKeyRule, meta.Recurrence,
			)
			rule = Rule{}
		}
		recurs = rule.Recurs()

		next, err = Advance(base, rule, today)
		if err != nil {
			// Only reachable through the step cap; fall back to the base date.
			slog.Warn(config.MsgMalformedRule,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyRecordID, meta.ID,
				config.LogKeyError, err,
			)
			next, recurs = base, false
		}

	case *Anniversary:
		if r.BirthDate.IsZero() {
			return Evaluation{}, fmt.Errorf("%w: %s", ErrInvalidBaseDate, meta.Label)
		}
		base = calendar.Day(r.BirthDate)
		recurs = true
		if next, err = ProjectYearly(base.Month(), base.Day(), today); err != nil {
			return Evaluation{}, err
		}

	case *Holiday:
		// Holidays have no status column, so they never reset.
		if next, err = ProjectYearly(r.Month, r.Day, today); err != nil {
			return Evaluation{}, fmt.Errorf("%w: %s", err, meta.Label)
		}

	default:
		return Evaluation{}, fmt.Errorf("%s: %T", config.ErrUnknownCategory, rec)
	}

	lead := max(meta.LeadDays, 0)
	urgent := max(meta.UrgentDays, 0)
	days := calendar.DaysBetween(today, next)

	ev := Evaluation{
		NextOccurrence:    next,
		NotificationStart: calendar.AddDays(next, -lead),
		DaysRemaining:     days,
		Urgent:            urgent > 0 && days <= urgent,
		InWindow:          days <= lead,
	}

	if recurs && meta.Status == StatusDone {
		previous := meta.StoredOccurrence
		if previous.IsZero() {
			previous = base
		}
		ev.StatusShouldReset = !calendar.Day(previous).Equal(next)
	}
	ev.Status = meta.Status
	if ev.StatusShouldReset {
		ev.Status = StatusKeep
	}

	switch r := rec.(type) {
	case *Anniversary:
		ev.Age = next.Year() - r.BirthDate.Year()
		ev.Countdown = Describe(today, next, false)
	case *Holiday:
		ev.Countdown = DescribeHoliday(days)
	default:
		ev.Countdown = Describe(today, next, weekend)
	}

	return ev, nil
}
