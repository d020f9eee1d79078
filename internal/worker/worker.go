// Package worker runs notification passes on a cron schedule and publishes
// their results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/feed"
	"github.com/tartampluch/go-reminder/internal/locale"
	"github.com/tartampluch/go-reminder/internal/metrics"
	"github.com/tartampluch/go-reminder/internal/server"
)

// Publisher receives the rendered documents of each pass.
type Publisher interface {
	Update(ics, notifications []byte)
}

// Worker evaluates every record, then renders and publishes the result.
type Worker struct {
	Store      engine.Store
	Settings   config.Settings
	Translator *locale.Translator
	Clock      engine.Clock

	// Publisher and Journal are optional.
	Publisher Publisher
	Journal   io.Writer

	// mu serializes passes so the store never sees two at once.
	mu sync.Mutex
}

// Filters derives the visibility toggles in effect at now.
func (w *Worker) Filters(now time.Time) engine.Filters {
	return engine.Filters{
		HideCompleted:  w.Settings.Filters.HideCompleted,
		HideWorkEvents: !w.Settings.ShowWorkEvents(now),
		ShowHolidays:   w.Settings.Filters.ShowHolidays,
	}
}

func (w *Worker) now() time.Time {
	if w.Clock == nil {
		return time.Now()
	}
	return w.Clock.Now()
}

// RunPass performs one pass: build, render, publish, journal.
func (w *Worker) RunPass(ctx context.Context) (engine.Report, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	now := w.now()
	log := slog.With(
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyPassID, uuid.NewString(),
	)
	log.Debug(config.MsgPassStarted)

	builder := &engine.Builder{Store: w.Store, Clock: w.Clock}
	report, err := builder.Build(ctx, now, w.Filters(now))
	for _, cat := range report.Failed {
		metrics.RecordCategoryFailure(cat.String())
	}
	if err != nil {
		metrics.RecordPass(metrics.ResultFailed, time.Since(start).Seconds())
		return report, fmt.Errorf("%s: %w", config.ErrPassFailed, err)
	}
	metrics.RecordEvaluation(report.Evaluated, report.Resets)

	ics, err := feed.Generate(report.Notifications, w.Translator, now)
	if err != nil {
		metrics.RecordPass(metrics.ResultFailed, time.Since(start).Seconds())
		return report, err
	}
	payload, err := server.EncodeNotifications(report, w.Translator, now)
	if err != nil {
		metrics.RecordPass(metrics.ResultFailed, time.Since(start).Seconds())
		return report, err
	}
	if w.Publisher != nil {
		w.Publisher.Update(ics, payload)
	}

	if err := WriteJournal(w.Journal, w.Translator, report, now); err != nil {
		// The pass already published; a journal failure is only logged.
		log.Error(config.ErrJournalWrite, config.LogKeyError, err)
	} else if w.Journal != nil && len(report.Notifications) > 0 {
		log.Debug(config.MsgJournalWritten, config.LogKeyCount, len(report.Notifications))
	}

	urgent := 0
	for _, n := range report.Notifications {
		if n.Evaluation.Urgent {
			urgent++
		}
	}
	metrics.SetActive(urgent, len(report.Notifications)-urgent)

	result := metrics.ResultSuccess
	if len(report.Failed) > 0 {
		result = metrics.ResultPartial
	}
	elapsed := time.Since(start)
	metrics.RecordPass(result, elapsed.Seconds())

	log.Info(config.MsgPassPublished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyActive, len(report.Notifications)),
			slog.Int(config.LogKeyUrgent, urgent),
			slog.Int(config.LogKeyDropped, len(report.Failed)),
		),
		config.LogKeyDuration, elapsed.Milliseconds(),
	)
	return report, nil
}

// Run performs a first pass immediately, then one per tick of the
// configured schedule until ctx is cancelled. A tick arriving while a pass
// is still running is skipped.
func (w *Worker) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn))),
	))
	if _, err := c.AddFunc(w.Settings.Schedule, func() { w.scheduledPass(ctx) }); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSchedule, err)
	}

	w.scheduledPass(ctx)

	c.Start()
	log.Info(config.MsgWorkerStart, config.LogKeySchedule, w.Settings.Schedule)

	<-ctx.Done()
	log.Info(config.MsgWorkerStop)
	<-c.Stop().Done()
	return nil
}

func (w *Worker) scheduledPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.RunPass(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info(config.MsgPassSkipped, config.LogKeyComponent, config.CompWorker)
			return
		}
		slog.Error(config.ErrPassFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err,
		)
	}
}
