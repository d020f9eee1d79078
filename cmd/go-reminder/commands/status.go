package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
)

// NewStatusCmd creates the status command.
func NewStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseStatus,
		Short: config.CmdShortStatus,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := engine.ParseCategory(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrArgs, err)
			}
			if cat == engine.CategoryHoliday {
				return fmt.Errorf("%s: %s", config.ErrArgs, config.ErrHolidayStatus)
			}
			status, err := engine.ParseStatus(args[2])
			if err != nil {
				return fmt.Errorf("%s: %w", config.ErrArgs, err)
			}
			id := args[1]

			backend, err := app.OpenStore(app.Settings)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			ctx := cmd.Context()
			if err := backend.SaveStatus(ctx, cat, id, status); err != nil {
				return err
			}
			if err := backend.Flush(ctx, cat); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), config.MsgStatusSaved, cat, id, status)
			return nil
		},
	}
}
