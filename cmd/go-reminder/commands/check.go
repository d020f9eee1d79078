package commands

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/locale"
	"github.com/tartampluch/go-reminder/internal/worker"
)

var (
	urgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorUrgent)).Bold(true)
	normalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorNormal)).Bold(true)
	detailStyle = lipgloss.NewStyle().PaddingLeft(2)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorMuted))
)

// NewCheckCmd creates the check command.
func NewCheckCmd(app *App) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   config.CmdUseCheck,
		Short: config.CmdShortCheck,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := app.OpenStore(app.Settings)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			settings := app.Settings
			if showAll {
				settings.Filters.HideCompleted = false
				settings.Filters.HideWorkEvents = false
				settings.UseWorkSchedule = false
			}

			journal := worker.OpenJournal(settings.JournalPath)
			defer func() { _ = journal.Close() }()

			tr := app.translator()
			w := &worker.Worker{
				Store:      backend,
				Settings:   settings,
				Translator: tr,
				Clock:      app.Clock,
				Journal:    journal,
			}
			report, err := w.RunPass(cmd.Context())
			if err != nil {
				return err
			}

			renderReport(cmd.OutOrStdout(), tr, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAll, config.FlagShowAll, false, config.FlagDescShowAll)
	return cmd
}

// renderReport prints one card per notification: the title in red when
// urgent and orange otherwise, followed by its details.
func renderReport(out io.Writer, tr *locale.Translator, report engine.Report) {
	if len(report.Notifications) == 0 {
		_, _ = io.WriteString(out, mutedStyle.Render(tr.Msg(config.TKeyEmpty))+"\n")
		return
	}

	var b strings.Builder
	for _, n := range report.Notifications {
		lines := tr.Lines(n)
		title := normalStyle
		if n.Evaluation.Urgent {
			title = urgentStyle
		}
		b.WriteString(title.Render(lines[0]))
		b.WriteByte('\n')
		for _, line := range lines[1:] {
			b.WriteString(detailStyle.Render(line))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(out, b.String())
}
