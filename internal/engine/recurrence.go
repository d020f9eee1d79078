package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-reminder/internal/calendar"
	"github.com/tartampluch/go-reminder/internal/config"
)

// Frequency is the unit of a recurrence rule.
type Frequency int

const (
	FreqNone Frequency = iota
	FreqMonthly
	FreqYearly
)

// Rule describes how a record repeats. Monthly and Yearly are Interval 1;
// "every N months/years" carries N in Interval.
type Rule struct {
	Freq     Frequency
	Interval int
}

// Recurs reports whether the rule produces more than one occurrence.
func (r Rule) Recurs() bool { return r.Freq != FreqNone }

// Months returns the step length in months.
func (r Rule) Months() int {
	switch r.Freq {
	case FreqMonthly:
		return r.Interval
	case FreqYearly:
		return 12 * r.Interval
	default:
		return 0
	}
}

var (
	monthUnits = map[string]bool{"luni": true, "luna": true, "lună": true, "month": true, "months": true}
	yearUnits  = map[string]bool{"ani": true, "an": true, "year": true, "years": true}
)

// ParseRule reads recurrence text: "" (none), "lunar"/"monthly", "anual"/"yearly",
// "la N luni|luna|ani|an" or "every N months|years".
func ParseRule(text string) (Rule, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	switch s {
	case "", "nan":
		return Rule{}, nil
	case "lunar", "monthly":
		return Rule{Freq: FreqMonthly, Interval: 1}, nil
	case "anual", "yearly", "annual":
		return Rule{Freq: FreqYearly, Interval: 1}, nil
	}

	parts := strings.Fields(s)
	if len(parts) != 3 || (parts[0] != "la" && parts[0] != "every") {
		return Rule{}, fmt.Errorf("%w: %q", ErrMalformedRule, text)
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil || n <= 0 {
		return Rule{}, fmt.Errorf("%w: %q", ErrMalformedRule, text)
	}

	switch {
	case monthUnits[parts[2]]:
		return Rule{Freq: FreqMonthly, Interval: n}, nil
	case yearUnits[parts[2]]:
		return Rule{Freq: FreqYearly, Interval: n}, nil
	}
	return Rule{}, fmt.Errorf("%w: %q", ErrMalformedRule, text)
}

// Advance returns the first occurrence base + k*step strictly after today.
// A base already after today is returned unchanged, as is any base under a
// non-recurring rule. Each candidate is computed from base, so day-of-month
// clamping never accumulates (Jan 31 monthly gives Feb 29, Mar 31, Apr 30).
func Advance(base time.Time, rule Rule, today time.Time) (time.Time, error) {
	base, today = calendar.Day(base), calendar.Day(today)
	if !rule.Recurs() {
		return base, nil
	}

	step := rule.Months()
	if step <= 0 {
		return time.Time{}, fmt.Errorf("%w: step %d", ErrMalformedRule, step)
	}

	candidate := base
	for k := 1; !candidate.After(today); k++ {
		if k > config.MaxAdvanceSteps {
			return time.Time{}, ErrUnboundedAdvance
		}
		candidate = calendar.AddMonths(base, k*step)
	}
	return candidate, nil
}

// ProjectYearly returns this year's (month, day) or next year's when it is
// already past. Today itself counts as the occurrence. Feb 29 falls on Feb 28
// in non-leap years.
func ProjectYearly(month time.Month, day int, today time.Time) (time.Time, error) {
	today = calendar.Day(today)
	if _, ok := calendar.Date(config.DefaultLeapYear, month, day); !ok {
		return time.Time{}, fmt.Errorf("%w: day %d month %d", ErrInvalidBaseDate, day, month)
	}

	candidate := clampedDate(today.Year(), month, day)
	if candidate.Before(today) {
		candidate = clampedDate(today.Year()+1, month, day)
	}
	return candidate, nil
}

func clampedDate(year int, month time.Month, day int) time.Time {
	if last := calendar.DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
