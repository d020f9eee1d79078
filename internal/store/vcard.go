package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

// OpenVCard opens the address book described by src.
func OpenVCard(ctx context.Context, src config.VCardSettings, fetcher VCardFetcher) (io.ReadCloser, error) {
	slog.Debug(config.MsgVCardOpen,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyMode, src.Mode)

	switch src.Mode {
	case config.SourceModeLocal:
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return fetcher.Fetch(ctx, src)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

// DecodeAnniversaries reads every card of r that carries a full birth date.
// Malformed cards and birthdays without a year are skipped; a failure of r
// itself ends the decode with an error.
func DecodeAnniversaries(ctx context.Context, r io.Reader, leadDays, urgentDays int) ([]*engine.Anniversary, error) {
	src := &sourceReader{r: r}
	decoder := vcard.NewDecoder(src)
	stats := struct{ processed, found int }{}
	var out []*engine.Anniversary

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		card, err := decoder.Decode()
		if src.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardRead, src.err)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, yearKnown, err := parseDate(bday.Value)
		if err != nil || !yearKnown {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyValue, bday.Value)
			continue
		}

		// FN, then N, then a fallback.
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Name(); n != nil {
			name = strings.TrimSpace(n.GivenName + " " + n.FamilyName)
		}

		stats.found++
		out = append(out, &engine.Anniversary{
			Meta: engine.Meta{
				Label:      name,
				LeadDays:   leadDays,
				UrgentDays: urgentDays,
				Status:     engine.StatusKeep,
				Recurrence: "anual",
			},
			BirthDate: birth,
		})
	}

	slog.Info(config.MsgVCardDecoded,
		config.LogKeyComponent, config.CompStore,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvaluated, stats.processed),
			slog.Int(config.LogKeyCount, stats.found),
		),
	)
	return out, nil
}

// sourceReader remembers the first read failure so it can be told apart
// from the parse errors of a malformed card.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

// NewAnniversaries returns the incoming entries not already present in
// existing, matched by label (case-insensitive) and birth date.
func NewAnniversaries(existing []engine.Record, incoming []*engine.Anniversary) []*engine.Anniversary {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	key := func(label string, t time.Time) string {
		return strings.ToLower(strings.TrimSpace(label)) + "|" + t.Format(config.DateFormatFullDash)
	}
	for _, rec := range existing {
		if a, ok := rec.(*engine.Anniversary); ok {
			seen[key(a.Label, a.BirthDate)] = struct{}{}
		}
	}

	var fresh []*engine.Anniversary
	for _, a := range incoming {
		k := key(a.Label, a.BirthDate)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, a)
	}
	return fresh
}

// parseDate handles the vCard BDAY formats.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true, nil
		}
	}

	// Truncated dates carry no year; keep a leap year so --02-29 survives.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
