// Package feed renders the active notifications as an iCalendar feed.
package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/locale"
)

// Generate encodes one all-day VEVENT per notification. Recurring records
// carry an RRULE starting at their next occurrence, and records with lead
// days get a display alarm that many days before.
func Generate(notifications []engine.Notification, tr *locale.Translator, now time.Time) ([]byte, error) {
	if len(notifications) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	urgent := 0
	for _, n := range notifications {
		event := newEvent(n, tr)
		event.Props.Set(dtStampProp)
		if n.Evaluation.Urgent {
			urgent++
		}
		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedGenerated,
		config.LogKeyComponent, config.CompFeed,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyCount, len(notifications)),
			slog.Int(config.LogKeyUrgent, urgent),
		),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

func newEvent(n engine.Notification, tr *locale.Translator) *ical.Event {
	meta := n.Record.Common()
	ev := n.Evaluation
	lines := tr.Lines(n)

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, UID(n))
	event.Props.SetText(config.PropSummary, meta.Label)
	event.Props.SetText(config.PropDescription, strings.Join(lines[1:], "\n"))
	event.Props.SetText(config.PropCategories, n.Category.String())

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(ev.NextOccurrence)
	event.Props.Set(dtStartProp)

	if ev.Urgent {
		event.Props.SetText(config.PropPriority, config.PriorityUrgent)
	}
	if opt := recurrence(n); opt != nil {
		event.Props.SetRecurrenceRule(opt)
	}
	if meta.LeadDays > 0 {
		addAlarm(event, Trigger(meta.LeadDays), tr.Phrase(n))
	}
	return event
}

// recurrence maps a record to its RRULE, or nil for one-off events. DTSTART
// is the next occurrence, which may already be clamped to a short month, so
// a base day past 28 is expressed as "last of 28..day" to track the record's
// own day instead of the clamped one.
func recurrence(n engine.Notification) *rrule.ROption {
	var (
		opt   rrule.ROption
		month time.Month
		day   int
	)
	switch rec := n.Record.(type) {
	case *engine.TimedEvent:
		rule, err := engine.ParseRule(rec.Recurrence)
		if err != nil || !rule.Recurs() {
			return nil
		}
		opt = rrule.ROption{Freq: rrule.MONTHLY, Interval: rule.Interval}
		if rule.Freq == engine.FreqYearly {
			opt.Freq = rrule.YEARLY
		}
		month, day = rec.BaseDate.Month(), rec.BaseDate.Day()
	case *engine.Anniversary:
		opt = rrule.ROption{Freq: rrule.YEARLY, Interval: 1}
		month, day = rec.BirthDate.Month(), rec.BirthDate.Day()
	case *engine.Holiday:
		opt = rrule.ROption{Freq: rrule.YEARLY, Interval: 1}
		month, day = rec.Month, rec.Day
	default:
		return nil
	}

	if day > config.ShortestMonthDays {
		for d := config.ShortestMonthDays; d <= day; d++ {
			opt.Bymonthday = append(opt.Bymonthday, d)
		}
		opt.Bysetpos = []int{-1}
		if opt.Freq == rrule.YEARLY {
			opt.Bymonth = []int{int(month)}
		}
	}
	return &opt
}

// Trigger returns the ISO 8601 duration firing days before the event.
func Trigger(days int) string {
	return fmt.Sprintf("%s%d%s", config.ISONegativePrefix, days, config.ISODay)
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value to avoid a VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// UID derives a stable identifier from the record identity, so clients keep
// the same event across refreshes.
func UID(n engine.Notification) string {
	meta := n.Record.Common()
	input := fmt.Sprintf(config.FormatHashInput, n.Category.String(), meta.ID, meta.Label, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}
