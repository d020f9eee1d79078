package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-reminder/internal/config"
)

// Category identifies one record table. The numeric order is the merge tie order.
type Category int

const (
	CategoryHoliday Category = iota
	CategoryEvent
	CategoryAnniversary
)

// Categories lists every category in merge order.
var Categories = []Category{CategoryHoliday, CategoryEvent, CategoryAnniversary}

func (c Category) String() string {
	switch c {
	case CategoryHoliday:
		return "holiday"
	case CategoryEvent:
		return "event"
	case CategoryAnniversary:
		return "anniversary"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Table returns the storage table name of the category.
func (c Category) Table() string {
	switch c {
	case CategoryHoliday:
		return config.TableHolidays
	case CategoryEvent:
		return config.TableEvents
	case CategoryAnniversary:
		return config.TableAnniversaries
	default:
		return ""
	}
}

// ParseCategory accepts the English name (singular or plural) or the table name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "holiday", "holidays", config.TableHolidays:
		return CategoryHoliday, nil
	case "event", "events", config.TableEvents:
		return CategoryEvent, nil
	case "anniversary", "anniversaries", config.TableAnniversaries:
		return CategoryAnniversary, nil
	}
	return 0, fmt.Errorf("%s: %q", config.ErrUnknownCategory, s)
}

// Status is the lifecycle flag of a record.
type Status string

const (
	StatusKeep Status = "keep"
	StatusDone Status = "done"
)

// ParseStatus accepts the English value or the stored table value.
// An empty string is Keep.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StatusKeep), config.StatusValueKeep:
		return StatusKeep, nil
	case string(StatusDone), config.StatusValueDone:
		return StatusDone, nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrUnknownStatus, s)
}

// Meta holds the fields every record variant shares.
type Meta struct {
	// ID is assigned by the store and is stable within a table.
	ID string

	Label      string
	Notes      string
	LeadDays   int
	UrgentDays int
	Status     Status

	// Recurrence is the raw rule text as stored. Blank means one-off.
	Recurrence string

	// StoredOccurrence is the next occurrence written by the previous pass.
	// Zero when no pass has run yet.
	StoredOccurrence time.Time
}

// Common returns the shared fields of a record.
func (m *Meta) Common() *Meta { return m }

// Record is one of *TimedEvent, *Anniversary or *Holiday.
type Record interface {
	Common() *Meta
	Category() Category
}

// TimedEvent is a dated event, optionally recurring.
type TimedEvent struct {
	Meta
	BaseDate         time.Time
	ConsiderWeekends bool
	WorkRelated      bool
}

// Anniversary repeats yearly on the birth date.
type Anniversary struct {
	Meta
	BirthDate time.Time
}

// Holiday repeats yearly on a fixed day and month.
type Holiday struct {
	Meta
	Day          int
	Month        time.Month
	Kind         string
	CrossHoliday bool
}

func (*TimedEvent) Category() Category  { return CategoryEvent }
func (*Anniversary) Category() Category { return CategoryAnniversary }
func (*Holiday) Category() Category     { return CategoryHoliday }
