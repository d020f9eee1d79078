// Package locale renders notifications as text in the user's language.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-reminder/internal/calendar"
	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	loadOnce  sync.Once
	bundle    *i18n.Bundle
	languages []string
)

// Bundle returns the translation bundle built from the embedded locale files
// and the language codes found. It is loaded once.
func Bundle() (*i18n.Bundle, []string) {
	loadOnce.Do(func() {
		bundle, languages = loadBundle()
	})
	return bundle, languages
}

func loadBundle() (*i18n.Bundle, []string) {
	b := i18n.NewBundle(language.Romanian)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return b, nil
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := b.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}
	return b, detected
}

// Translator renders messages in one language.
type Translator struct {
	Tag       language.Tag
	localizer *i18n.Localizer
}

// New returns a Translator for lang. Unknown codes fall back to Romanian.
func New(lang string) *Translator {
	b, _ := Bundle()
	tag := calendar.Lang(lang)
	return &Translator{Tag: tag, localizer: i18n.NewLocalizer(b, tag.String())}
}

// Msg translates a key without parameters.
func (t *Translator) Msg(key string) string {
	return t.Localize(key, nil)
}

// Localize translates key with template data. A "Count" entry selects the
// plural form. Missing keys are returned as-is.
func (t *Translator) Localize(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	cfg := &i18n.LocalizeConfig{MessageID: key, TemplateData: data}
	if n, ok := data["Count"].(int); ok {
		cfg.PluralCount = n
	}
	msg, err := t.localizer.Localize(cfg)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

func (t *Translator) count(key string, n int) string {
	return t.Localize(key, map[string]any{"Count": n})
}

// Countdown renders the time-left phrase of a timed event or anniversary.
func (t *Translator) Countdown(c engine.Countdown) string {
	switch c.Kind {
	case engine.CountdownToday:
		if c.WeekendWarning {
			return t.Msg(config.TKeyTodayWeekend)
		}
		return t.Msg(config.TKeyToday)
	case engine.CountdownTomorrow:
		if c.WeekendWarning {
			return t.Msg(config.TKeyTomorrowWeekend)
		}
		return t.Msg(config.TKeyTomorrow)
	case engine.CountdownYesterday:
		return t.Msg(config.TKeyYesterday)
	case engine.CountdownTwoDaysAgo:
		return t.Msg(config.TKeyTwoDaysAgo)
	case engine.CountdownDaysAgo:
		return t.count(config.TKeyDaysAgo, c.Days)
	case engine.CountdownLastWorkingDay:
		return t.Msg(config.TKeyLastWorkingDay)
	case engine.CountdownTwoWorkingDays:
		return t.Msg(config.TKeyTwoWorkingDays)
	case engine.CountdownWorkingDaysLeft:
		if c.IncludesEventDay {
			return t.count(config.TKeyWorkingDaysWithEv, c.Days)
		}
		return t.count(config.TKeyWorkingDaysLeft, c.Days)
	case engine.CountdownInTwoDays:
		return t.Msg(config.TKeyHolidayInTwoDays)
	case engine.CountdownInDays:
		return t.count(config.TKeyHolidayInDays, c.Days)
	default:
		return t.count(config.TKeyCalendarDaysLeft, c.Days)
	}
}

// holidayWhen renders the short relative day used for holidays.
func (t *Translator) holidayWhen(c engine.Countdown) string {
	switch c.Kind {
	case engine.CountdownToday:
		return t.Msg(config.TKeyHolidayToday)
	case engine.CountdownTomorrow:
		return t.Msg(config.TKeyHolidayTomorrow)
	default:
		return t.Countdown(c)
	}
}

// Phrase is the main status line of a notification.
func (t *Translator) Phrase(n engine.Notification) string {
	ev := n.Evaluation
	switch n.Category {
	case engine.CategoryAnniversary:
		return t.Localize(config.TKeyAnniversaryAge, map[string]any{"Count": ev.Age, "Days": ev.DaysRemaining})
	case engine.CategoryHoliday:
		return t.holidayWhen(ev.Countdown)
	default:
		return t.Countdown(ev.Countdown)
	}
}

// LongDate formats d as "Luni, 24 iunie 2024" or "Monday, June 24, 2024".
func (t *Translator) LongDate(d time.Time) string {
	month := calendar.MonthName(d.Month(), t.Tag)
	if t.Tag == language.Romanian {
		month = cases.Lower(language.Romanian).String(month)
	}
	return t.Localize(config.TKeyDateLong, map[string]any{
		"Weekday": calendar.WeekdayName(d, t.Tag),
		"Day":     d.Day(),
		"Month":   month,
		"Year":    d.Year(),
	})
}

// Lines renders a notification as the lines of a card: title first, then
// the details in display order.
func (t *Translator) Lines(n engine.Notification) []string {
	meta := n.Record.Common()
	ev := n.Evaluation
	lines := []string{meta.Label}

	switch rec := n.Record.(type) {
	case *engine.TimedEvent:
		if rec.WorkRelated {
			lines = append(lines, t.Msg(config.TKeyWorkEvent))
		}
		lines = append(lines,
			t.Localize(config.TKeyDeadline, map[string]any{"Date": t.LongDate(ev.NextOccurrence)}),
			t.Phrase(n),
		)
		if meta.Recurrence != "" {
			lines = append(lines, t.Localize(config.TKeyRecurrence, map[string]any{"Rule": meta.Recurrence}))
		}
	case *engine.Holiday:
		lines = append(lines, t.Phrase(n), t.LongDate(ev.NextOccurrence))
		var info []string
		if rec.Kind != "" {
			info = append(info, rec.Kind)
		}
		if rec.CrossHoliday {
			info = append(info, config.CrossValue)
		}
		if len(info) > 0 {
			lines = append(lines, strings.Join(info, ", "))
		}
	default:
		lines = append(lines, t.Phrase(n), t.LongDate(ev.NextOccurrence))
	}

	if meta.Notes != "" {
		lines = append(lines, meta.Notes)
	}
	return lines
}

func (t *Translator) yesNo(b bool) string {
	if b {
		return t.Msg(config.TKeyYes)
	}
	return t.Msg(config.TKeyNo)
}

// JournalHeader is the first line of a journal entry written at now.
func (t *Translator) JournalHeader(now time.Time) string {
	return t.Localize(config.TKeyJournalHeader, map[string]any{"Time": now.Format(time.DateTime)})
}

// JournalLine renders one notification for the journal.
func (t *Translator) JournalLine(n engine.Notification, today time.Time) string {
	meta := n.Record.Common()
	ev := n.Evaluation
	data := map[string]any{
		"Label":  meta.Label,
		"Date":   ev.NextOccurrence.Format(config.DateLayout),
		"Days":   strconv.Itoa(ev.DaysRemaining),
		"Urgent": t.yesNo(ev.Urgent),
		"Notes":  meta.Notes,
	}

	switch rec := n.Record.(type) {
	case *engine.TimedEvent:
		data["Recurrence"] = meta.Recurrence
		data["Work"] = t.yesNo(rec.WorkRelated)
		if rec.ConsiderWeekends {
			// Both ends count, so an event landing on a weekend shows up here.
			if weekend := calendar.WeekendDaysThrough(today, ev.NextOccurrence); weekend > 0 {
				data["Weekend"] = strconv.Itoa(weekend)
				data["Workdays"] = strconv.Itoa(max(0, ev.DaysRemaining+1-weekend))
				return t.Localize(config.TKeyJournalEventWeek, data)
			}
		}
		return t.Localize(config.TKeyJournalEvent, data)
	case *engine.Anniversary:
		data["Age"] = strconv.Itoa(ev.Age)
		return t.Localize(config.TKeyJournalAnnivers, data)
	case *engine.Holiday:
		data["Kind"] = rec.Kind
		data["Cross"] = t.yesNo(rec.CrossHoliday)
		return t.Localize(config.TKeyJournalHoliday, data)
	default:
		return meta.Label
	}
}
