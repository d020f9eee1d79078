package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-reminder/internal/config"
)

// NewInitCmd creates the init command.
func NewInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseInit,
		Short: config.CmdShortInit,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := app.OpenStore(app.Settings)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			if err := backend.Init(cmd.Context()); err != nil {
				return err
			}

			path := app.settingsPath()
			if err := config.Save(path, app.Settings); err != nil {
				return err
			}

			location := app.Settings.DataDir
			if app.Settings.Backend == config.BackendSQLite {
				location = app.Settings.DatabasePath
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), config.MsgInitDone, location, path)
			return nil
		},
	}
}
