package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/store"
)

// NewImportCmd creates the import command.
func NewImportCmd(app *App) *cobra.Command {
	var (
		password   string
		leadDays   int
		urgentDays int
	)

	cmd := &cobra.Command{
		Use:   config.CmdUseImport,
		Short: config.CmdShortImport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := app.Settings.VCard
			if cmd.Flags().Changed(config.FlagLeadDays) {
				src.LeadDays = leadDays
			}
			if cmd.Flags().Changed(config.FlagUrgentDays) {
				src.UrgentDays = urgentDays
			}
			if password != "" {
				if err := store.StoreWebPassword(src.WebUser, password); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			rc, err := store.OpenVCard(ctx, src, app.Fetcher)
			if err != nil {
				return err
			}
			defer func() { _ = rc.Close() }()

			incoming, err := store.DecodeAnniversaries(ctx, rc, src.LeadDays, src.UrgentDays)
			if err != nil {
				return err
			}

			backend, err := app.OpenStore(app.Settings)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			existing, err := backend.LoadRecords(ctx, engine.CategoryAnniversary)
			if err != nil {
				return err
			}
			fresh := store.NewAnniversaries(existing, incoming)
			if len(fresh) > 0 {
				if err := backend.AppendAnniversaries(ctx, fresh); err != nil {
					return err
				}
			}

			slog.Info(config.MsgImported,
				config.LogKeyComponent, config.CompCLI,
				config.LogKeyCount, len(fresh),
			)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), config.MsgImportDone, len(fresh), len(incoming)-len(fresh))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, config.FlagWebPass, "", config.FlagDescWebPass)
	cmd.Flags().IntVar(&leadDays, config.FlagLeadDays, 0, config.FlagDescLeadDays)
	cmd.Flags().IntVar(&urgentDays, config.FlagUrgentDays, 0, config.FlagDescUrgentDays)
	return cmd
}
