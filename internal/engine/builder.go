package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tartampluch/go-reminder/internal/calendar"
	"github.com/tartampluch/go-reminder/internal/config"
)

// Store is the persistence contract the builder reads from and writes back to.
// Records are returned in table order.
type Store interface {
	LoadRecords(ctx context.Context, cat Category) ([]Record, error)
	SaveDerivedFields(ctx context.Context, cat Category, id string, next, start time.Time) error
	SaveStatus(ctx context.Context, cat Category, id string, status Status) error
}

// Flusher is implemented by stores that buffer writes per category.
type Flusher interface {
	Flush(ctx context.Context, cat Category) error
}

// Filters are the visibility toggles applied to one build.
type Filters struct {
	HideCompleted  bool
	HideWorkEvents bool
	ShowHolidays   bool
}

// Notification is one entry of the merged active set.
type Notification struct {
	Category   Category
	Record     Record
	Evaluation Evaluation
}

// Report is the result of one build.
type Report struct {
	Today         time.Time
	Notifications []Notification
	Evaluated     int
	Resets        int
	Skipped       int
	Failed        []Category
}

// Builder runs the evaluator over every category and merges the results.
type Builder struct {
	Store Store
	Clock Clock
}

// Build evaluates every record of every category for today, writes back the
// derived dates and status resets without touching the loaded records, and returns the in-window records that pass
// filters in date order. A category whose load or write fails is dropped from
// the result; Build fails only when every attempted category failed.
func (b *Builder) Build(ctx context.Context, today time.Time, filters Filters) (Report, error) {
	if today.IsZero() && b.Clock != nil {
		today = b.Clock.Now()
	}
	report := Report{Today: calendar.Day(today)}

	attempted := 0
	for _, cat := range Categories {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if cat == CategoryHoliday && !filters.ShowHolidays {
			continue
		}
		attempted++

		active, stats, err := b.runCategory(ctx, cat, report.Today, filters)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			slog.Warn(config.MsgCategoryDropped,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyCategory, cat.String(),
				config.LogKeyError, err,
			)
			report.Failed = append(report.Failed, cat)
			continue
		}

		report.Notifications = append(report.Notifications, active...)
		report.Evaluated += stats.evaluated
		report.Resets += stats.resets
		report.Skipped += stats.skipped
	}

	if attempted > 0 && len(report.Failed) == attempted {
		return report, ErrAllCategoriesUnavailable
	}

	// Categories were appended in tie order, so a stable sort keeps it.
	sort.SliceStable(report.Notifications, func(i, j int) bool {
		return report.Notifications[i].Evaluation.NextOccurrence.Before(report.Notifications[j].Evaluation.NextOccurrence)
	})

	slog.Info(config.MsgPassFinished,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvaluated, report.Evaluated),
			slog.Int(config.LogKeyActive, len(report.Notifications)),
			slog.Int(config.LogKeyResets, report.Resets),
			slog.Int(config.LogKeyDropped, len(report.Failed)),
		),
	)
	return report, nil
}

type categoryStats struct {
	evaluated, resets, skipped int
}

type pending struct {
	rec Record
	ev  Evaluation
}

// runCategory is the per-category pipeline: load, evaluate all, write, filter.
func (b *Builder) runCategory(ctx context.Context, cat Category, today time.Time, filters Filters) ([]Notification, categoryStats, error) {
	var stats categoryStats

	records, err := b.Store.LoadRecords(ctx, cat)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrCategoryUnavailable, err)
	}

	// Compute phase.
	evaluated := make([]pending, 0, len(records))
	for _, rec := range records {
		ev, err := Evaluate(rec, today)
		if err != nil {
			stats.skipped++
			slog.Warn(config.MsgSkippedRecord,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyCategory, cat.String(),
				config.LogKeyRecordID, rec.Common().ID,
				config.LogKeyError, err,
			)
			continue
		}
		evaluated = append(evaluated, pending{rec: rec, ev: ev})
	}
	stats.evaluated = len(evaluated)

	// Write phase.
	for _, p := range evaluated {
		meta := p.rec.Common()
		if err := b.Store.SaveDerivedFields(ctx, cat, meta.ID, p.ev.NextOccurrence, p.ev.NotificationStart); err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrCategoryUnavailable, err)
		}
		if p.ev.StatusShouldReset {
			if err := b.Store.SaveStatus(ctx, cat, meta.ID, p.ev.Status); err != nil {
				return nil, stats, fmt.Errorf("%w: %w", ErrCategoryUnavailable, err)
			}
			stats.resets++
			slog.Info(config.MsgStatusReset,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyCategory, cat.String(),
				config.LogKeyRecordID, meta.ID,
				config.LogKeyNext, p.ev.NextOccurrence.Format(config.DateLayout),
			)
		}
	}
	if f, ok := b.Store.(Flusher); ok {
		if err := f.Flush(ctx, cat); err != nil {
			return nil, stats, fmt.Errorf("%w: %w", ErrCategoryUnavailable, err)
		}
	}

	// Contribute phase.
	var active []Notification
	for _, p := range evaluated {
		if !p.ev.InWindow || !visible(p.rec, p.ev, filters) {
			continue
		}
		active = append(active, Notification{Category: cat, Record: p.rec, Evaluation: p.ev})
	}
	return active, stats, nil
}

// visible applies the completed and work-related filters. The status is the
// evaluated one, so a record reset in this pass counts as pending again.
func visible(rec Record, ev Evaluation, f Filters) bool {
	if f.HideCompleted && ev.Status == StatusDone {
		return false
	}
	if ev, ok := rec.(*TimedEvent); ok && f.HideWorkEvents && ev.WorkRelated {
		return false
	}
	return true
}
