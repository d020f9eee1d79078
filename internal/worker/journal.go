package worker

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/locale"
)

const journalIndent = "  - "

// OpenJournal returns a rotating writer for the notification journal.
func OpenJournal(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.LogMaxSizeMB,
		MaxBackups: config.LogMaxBackups,
		MaxAge:     config.LogMaxAgeDays,
	}
}

// WriteJournal appends one block for the pass: a timestamped header followed
// by one indented line per notification. Nothing is written for an empty set.
func WriteJournal(out io.Writer, tr *locale.Translator, report engine.Report, now time.Time) error {
	if out == nil || len(report.Notifications) == 0 {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString(tr.JournalHeader(now))
	buf.WriteByte('\n')
	for _, n := range report.Notifications {
		buf.WriteString(journalIndent)
		buf.WriteString(tr.JournalLine(n, report.Today))
		buf.WriteByte('\n')
	}

	// One write per block keeps blocks whole across rotation.
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%s: %w", config.ErrJournalWrite, err)
	}
	return nil
}
