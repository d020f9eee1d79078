package commands

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/metrics"
	"github.com/tartampluch/go-reminder/internal/server"
	"github.com/tartampluch/go-reminder/internal/worker"
)

// NewServeCmd creates the serve command. It runs until interrupted.
func NewServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdUseServe,
		Short: config.CmdShortServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := app.OpenStore(app.Settings)
			if err != nil {
				return err
			}
			defer func() { _ = backend.Close() }()

			journal := worker.OpenJournal(app.Settings.JournalPath)
			defer func() { _ = journal.Close() }()

			srv := server.New(app.Settings.ServerPort, metrics.Handler())
			w := &worker.Worker{
				Store:      backend,
				Settings:   app.Settings,
				Translator: app.translator(),
				Clock:      app.Clock,
				Publisher:  srv,
				Journal:    journal,
			}

			// Either side failing stops the other.
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Start(ctx) })
			g.Go(func() error { return w.Run(ctx) })
			return g.Wait()
		},
	}
}
