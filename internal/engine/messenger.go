package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-reminder/internal/calendar"
)

// CountdownKind selects the phrase used to describe the distance to an occurrence.
type CountdownKind int

const (
	CountdownToday CountdownKind = iota
	CountdownTomorrow
	CountdownYesterday
	CountdownTwoDaysAgo
	CountdownDaysAgo
	CountdownCalendarDaysLeft
	CountdownLastWorkingDay
	CountdownTwoWorkingDays
	CountdownWorkingDaysLeft
	CountdownInTwoDays
	CountdownInDays
)

var countdownNames = [...]string{
	"today", "tomorrow", "yesterday", "two_days_ago", "days_ago", "calendar_days_left",
	"last_working_day", "two_working_days", "working_days_left", "in_two_days", "in_days",
}

func (k CountdownKind) String() string {
	if int(k) < len(countdownNames) {
		return countdownNames[k]
	}
	return "unknown"
}

// MarshalText lets the kind appear by name in JSON output.
func (k CountdownKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *CountdownKind) UnmarshalText(text []byte) error {
	for i, name := range countdownNames {
		if name == string(text) {
			*k = CountdownKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown countdown kind %q", text)
}

// Countdown is the language-neutral shape of an urgency message.
type Countdown struct {
	Kind CountdownKind `json:"kind"`

	// Days is the count carried by DaysAgo, CalendarDaysLeft, WorkingDaysLeft and InDays.
	Days int `json:"days,omitempty"`

	// WeekendWarning marks Today/Tomorrow when no work can be done before the event.
	WeekendWarning bool `json:"weekend_warning,omitempty"`

	// IncludesEventDay marks WorkingDaysLeft when the event day itself is a working day.
	IncludesEventDay bool `json:"includes_event_day,omitempty"`
}

// Describe classifies the distance from today to occurrence. With
// considerWeekends the count is in working days and weekend-specific phrases apply.
func Describe(today, occurrence time.Time, considerWeekends bool) Countdown {
	today, occurrence = calendar.Day(today), calendar.Day(occurrence)
	days := calendar.DaysBetween(today, occurrence)

	if !considerWeekends {
		switch {
		case days == 0:
			return Countdown{Kind: CountdownToday}
		case days == 1:
			return Countdown{Kind: CountdownTomorrow}
		case days == -1:
			return Countdown{Kind: CountdownYesterday}
		case days == -2:
			return Countdown{Kind: CountdownTwoDaysAgo}
		case days < 0:
			return Countdown{Kind: CountdownDaysAgo, Days: -days}
		default:
			return Countdown{Kind: CountdownCalendarDaysLeft, Days: days}
		}
	}

	wd := today.Weekday()
	eventOnWeekend := calendar.IsWeekend(occurrence)

	switch {
	case days == 0:
		return Countdown{Kind: CountdownToday, WeekendWarning: calendar.IsWeekend(today)}
	case days == 1:
		return Countdown{Kind: CountdownTomorrow, WeekendWarning: wd == time.Saturday}
	case wd == time.Friday && eventOnWeekend:
		return Countdown{Kind: CountdownLastWorkingDay}
	case wd == time.Thursday && eventOnWeekend:
		return Countdown{Kind: CountdownTwoWorkingDays}
	}

	return Countdown{
		Kind:             CountdownWorkingDaysLeft,
		Days:             calendar.BusinessDaysBetween(today, occurrence),
		IncludesEventDay: !eventOnWeekend,
	}
}

// DescribeHoliday classifies the distance to a holiday.
func DescribeHoliday(daysRemaining int) Countdown {
	switch daysRemaining {
	case 0:
		return Countdown{Kind: CountdownToday}
	case 1:
		return Countdown{Kind: CountdownTomorrow}
	case 2:
		return Countdown{Kind: CountdownInTwoDays}
	default:
		return Countdown{Kind: CountdownInDays, Days: daysRemaining}
	}
}
