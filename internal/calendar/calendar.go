// Package calendar holds the whole-day date helpers shared by the engine and the
// stores: day normalization, month arithmetic, business days and localized names.
package calendar

import (
	"time"

	"golang.org/x/text/language"
)

var (
	weekdaysRO = [...]string{"Duminică", "Luni", "Marți", "Miercuri", "Joi", "Vineri", "Sâmbătă"}
	weekdaysEN = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

	monthsRO = [...]string{"Ianuarie", "Februarie", "Martie", "Aprilie", "Mai", "Iunie",
		"Iulie", "August", "Septembrie", "Octombrie", "Noiembrie", "Decembrie"}
	monthsEN = [...]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
)

var langMatcher = language.NewMatcher([]language.Tag{language.Romanian, language.English})

// Lang resolves a user supplied language code to Romanian or English.
// Unknown codes fall back to Romanian.
func Lang(code string) language.Tag {
	tag, err := language.Parse(code)
	if err != nil {
		return language.Romanian
	}
	_, idx, conf := langMatcher.Match(tag)
	if conf == language.No || idx != 1 {
		return language.Romanian
	}
	return language.English
}

func isEnglish(tag language.Tag) bool {
	base, _ := tag.Base()
	en, _ := language.English.Base()
	return base == en
}

// Day truncates t to its calendar date at midnight UTC.
// All engine comparisons operate on values returned by Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a day value, reporting false when the components do not name a real date.
func Date(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > DaysIn(year, month) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the signed number of whole days from a to b.
// It works on Unix seconds, so spans beyond time.Duration's range stay exact.
func DaysBetween(a, b time.Time) int {
	return int((Day(b).Unix() - Day(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AddDays shifts a day value by n days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// AddMonths shifts t by n months, clamping the day to the target month's length
// (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	t = Day(t)
	total := int(t.Month()) - 1 + n
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	day := t.Day()
	if last := DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// BusinessDaysBetween counts Monday-Friday dates in [start, end).
// It returns 0 when end is not after start.
func BusinessDaysBetween(start, end time.Time) int {
	start, end = Day(start), Day(end)
	total := DaysBetween(start, end)
	if total <= 0 {
		return 0
	}

	count := (total / 7) * 5
	cursor := start
	for i := 0; i < total%7; i++ {
		if !IsWeekend(cursor) {
			count++
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return count
}

// WeekendDaysThrough counts Saturdays and Sundays in [start, end], both ends
// included. It returns 0 when end is before start.
func WeekendDaysThrough(start, end time.Time) int {
	total := DaysBetween(start, end) + 1
	if total <= 0 {
		return 0
	}
	return total - BusinessDaysBetween(start, AddDays(end, 1))
}

// WeekdayName returns the canonical weekday name in the given language.
func WeekdayName(t time.Time, lang language.Tag) string {
	if isEnglish(lang) {
		return weekdaysEN[t.Weekday()]
	}
	return weekdaysRO[t.Weekday()]
}

// MonthName returns the canonical month name in the given language.
func MonthName(m time.Month, lang language.Tag) string {
	if m < time.January || m > time.December {
		return ""
	}
	if isEnglish(lang) {
		return monthsEN[m-1]
	}
	return monthsRO[m-1]
}
