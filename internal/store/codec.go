package store

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-reminder/internal/calendar"
	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

// requiredColumns must be present in a table header; the rest are optional
// and added empty when missing.
var requiredColumns = map[engine.Category][]string{
	engine.CategoryEvent:       {config.ColLabel, config.ColDate},
	engine.CategoryAnniversary: {config.ColLabel, config.ColDate},
	engine.CategoryHoliday:     {config.ColLabel, config.ColDay, config.ColMonth},
}

// columns returns the canonical column list of a category.
func columns(cat engine.Category) []string {
	switch cat {
	case engine.CategoryEvent:
		return config.EventColumns
	case engine.CategoryAnniversary:
		return config.AnniversaryColumns
	default:
		return config.HolidayColumns
	}
}

// rowReader decodes the cells of one stored row. Malformed cells are coerced
// to their zero value and logged.
type rowReader struct {
	cat engine.Category
	id  string
	get func(col string) string
}

func (r rowReader) text(col string) string {
	v := strings.TrimSpace(r.get(col))
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

func (r rowReader) coerced(col, value string) {
	slog.Warn(config.MsgRowCoerced,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCategory, r.cat.String(),
		config.LogKeyRow, r.id,
		config.LogKeyColumn, col,
		config.LogKeyValue, value)
}

func (r rowReader) int(col string) int {
	v := r.text(col)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	// Spreadsheet exports write whole numbers as 7.0.
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	r.coerced(col, v)
	return 0
}

func (r rowReader) bool(col string) bool {
	v := r.text(col)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.coerced(col, v)
		return false
	}
	return b
}

// date parses a stored date. Unparseable dates yield the zero time, which the
// evaluator rejects so the record is skipped.
func (r rowReader) date(col string) time.Time {
	v := r.text(col)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{config.DateLayout, config.DateFormatFullDash} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	r.coerced(col, v)
	return time.Time{}
}

func (r rowReader) status() engine.Status {
	v := r.text(config.ColStatus)
	s, err := engine.ParseStatus(v)
	if err != nil {
		r.coerced(config.ColStatus, v)
		return engine.StatusKeep
	}
	return s
}

func (r rowReader) meta() engine.Meta {
	return engine.Meta{
		ID:               r.id,
		Label:            r.text(config.ColLabel),
		Notes:            r.text(config.ColNotes),
		LeadDays:         r.int(config.ColLeadDays),
		UrgentDays:       r.int(config.ColUrgentDays),
		Recurrence:       r.text(config.ColRecurrence),
		StoredOccurrence: r.date(config.ColNextDate),
	}
}

// decodeRecord builds the record of category cat from one stored row.
func decodeRecord(cat engine.Category, id string, get func(col string) string) engine.Record {
	r := rowReader{cat: cat, id: id, get: get}
	m := r.meta()

	switch cat {
	case engine.CategoryEvent:
		m.Status = r.status()
		return &engine.TimedEvent{
			Meta:             m,
			BaseDate:         r.date(config.ColDate),
			ConsiderWeekends: r.bool(config.ColWeekend),
			WorkRelated:      r.bool(config.ColWork),
		}
	case engine.CategoryAnniversary:
		m.Status = r.status()
		return &engine.Anniversary{Meta: m, BirthDate: r.date(config.ColDate)}
	default:
		// Holidays carry no status.
		m.Status = engine.StatusKeep
		m.Recurrence = ""
		h := &engine.Holiday{
			Meta:         m,
			Day:          r.int(config.ColDay),
			Kind:         r.text(config.ColKind),
			CrossHoliday: crossFlag(r.text(config.ColCross)),
		}
		if raw := r.text(config.ColMonth); raw != "" {
			month, err := calendar.ParseMonth(raw)
			if err != nil {
				r.coerced(config.ColMonth, raw)
			} else {
				h.Month = month
			}
		}
		return h
	}
}

// crossFlag reads the red-cross marker, which is free text when set.
func crossFlag(v string) bool {
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

func statusValue(s engine.Status) string {
	if s == engine.StatusDone {
		return config.StatusValueDone
	}
	return config.StatusValueKeep
}

// encodeRecord returns the cells of rec keyed by column, in the CSV text form.
func encodeRecord(rec engine.Record) map[string]string {
	m := rec.Common()
	cells := map[string]string{
		config.ColLabel:      m.Label,
		config.ColNotes:      m.Notes,
		config.ColLeadDays:   strconv.Itoa(m.LeadDays),
		config.ColUrgentDays: strconv.Itoa(m.UrgentDays),
		config.ColRecurrence: m.Recurrence,
		config.ColStatus:     statusValue(m.Status),
	}
	if !m.StoredOccurrence.IsZero() {
		cells[config.ColNextDate] = m.StoredOccurrence.Format(config.DateLayout)
	}

	switch r := rec.(type) {
	case *engine.TimedEvent:
		cells[config.ColDate] = r.BaseDate.Format(config.DateLayout)
		cells[config.ColWeekend] = boolValue(r.ConsiderWeekends)
		cells[config.ColWork] = boolValue(r.WorkRelated)
	case *engine.Anniversary:
		cells[config.ColDate] = r.BirthDate.Format(config.DateLayout)
	case *engine.Holiday:
		delete(cells, config.ColStatus)
		delete(cells, config.ColRecurrence)
		cells[config.ColDay] = strconv.Itoa(r.Day)
		cells[config.ColMonth] = strconv.Itoa(int(r.Month))
		cells[config.ColKind] = r.Kind
		if r.CrossHoliday {
			cells[config.ColCross] = config.CrossValue
		}
	}
	return cells
}

func boolValue(b bool) string {
	if b {
		return config.BoolValueTrue
	}
	return config.BoolValueFalse
}
