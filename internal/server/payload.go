package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/locale"
)

// Entry is one notification in the JSON view.
type Entry struct {
	Category      string           `json:"category"`
	ID            string           `json:"id"`
	Label         string           `json:"label"`
	Date          string           `json:"date"`
	NotifyFrom    string           `json:"notify_from"`
	DaysRemaining int              `json:"days_remaining"`
	Urgent        bool             `json:"urgent"`
	Status        string           `json:"status,omitempty"`
	Age           int              `json:"age,omitempty"`
	Countdown     engine.Countdown `json:"countdown"`
	Message       string           `json:"message"`
	Lines         []string         `json:"lines"`
}

// Payload is the JSON document served on /notifications.
type Payload struct {
	Today     string   `json:"today"`
	Generated string   `json:"generated"`
	Message   string   `json:"message,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	Entries   []Entry  `json:"entries"`
}

// NewPayload converts a build report. An empty active set carries the
// localized empty-state message.
func NewPayload(report engine.Report, tr *locale.Translator, now time.Time) Payload {
	p := Payload{
		Today:     report.Today.Format(time.DateOnly),
		Generated: now.Format(time.RFC3339),
		Entries:   make([]Entry, 0, len(report.Notifications)),
	}
	for _, cat := range report.Failed {
		p.Failed = append(p.Failed, cat.String())
	}
	if len(report.Notifications) == 0 {
		p.Message = tr.Msg(config.TKeyEmpty)
	}

	for _, n := range report.Notifications {
		meta := n.Record.Common()
		ev := n.Evaluation
		e := Entry{
			Category:      n.Category.String(),
			ID:            meta.ID,
			Label:         meta.Label,
			Date:          ev.NextOccurrence.Format(time.DateOnly),
			NotifyFrom:    ev.NotificationStart.Format(time.DateOnly),
			DaysRemaining: ev.DaysRemaining,
			Urgent:        ev.Urgent,
			Age:           ev.Age,
			Countdown:     ev.Countdown,
			Message:       tr.Phrase(n),
			Lines:         tr.Lines(n),
		}
		if n.Category != engine.CategoryHoliday {
			e.Status = string(ev.Status)
		}
		p.Entries = append(p.Entries, e)
	}
	return p
}

// EncodeNotifications renders the JSON view of a report.
func EncodeNotifications(report engine.Report, tr *locale.Translator, now time.Time) ([]byte, error) {
	data, err := json.Marshal(NewPayload(report, tr, now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrJSONEncode, err)
	}
	return data, nil
}
