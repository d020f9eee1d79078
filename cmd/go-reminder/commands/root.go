// Package commands implements the go-reminder command line.
package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-reminder/internal/config"
	"github.com/tartampluch/go-reminder/internal/engine"
	"github.com/tartampluch/go-reminder/internal/locale"
	"github.com/tartampluch/go-reminder/internal/store"
)

// App carries the state shared by every command.
type App struct {
	SettingsPath string
	Language     string
	Debug        bool

	// Settings are loaded before any subcommand runs.
	Settings config.Settings

	// Logging installs the default logger. The returned closer, if any, is
	// closed once the command finishes.
	Logging func(debug bool) io.Closer

	Clock     engine.Clock
	OpenStore func(config.Settings) (store.Backend, error)
	Fetcher   store.VCardFetcher

	logCloser io.Closer
}

// NewApp returns an App wired to the real clock, store and network.
func NewApp() *App {
	return &App{
		Clock:     engine.RealClock{},
		OpenStore: store.Open,
		Fetcher:   store.NewHTTPFetcher(),
	}
}

func (a *App) settingsPath() string {
	if a.SettingsPath != "" {
		return a.SettingsPath
	}
	return config.DefaultSettingsPath()
}

func (a *App) setup() error {
	if a.Logging != nil {
		a.logCloser = a.Logging(a.Debug)
	}

	s, err := config.Load(a.settingsPath())
	if err != nil {
		return err
	}
	if a.Language != "" {
		s.Language = a.Language
	}
	a.Settings = s
	return nil
}

// Close releases what setup acquired. It is safe to call more than once.
func (a *App) Close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

func (a *App) translator() *locale.Translator {
	return locale.New(a.Settings.Language)
}

// NewRootCmd builds the command tree.
func NewRootCmd(app *App) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:           config.AppCommand,
		Short:         config.CmdShortRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				return nil
			}
			return app.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.SettingsPath, config.FlagSettings, "", config.FlagDescSettings)
	flags.StringVar(&app.Language, config.FlagLanguage, "", config.FlagDescLanguage)
	flags.BoolVar(&app.Debug, config.FlagDebug, false, config.FlagDescDebug)
	root.Flags().BoolVar(&showVersion, config.FlagVersion, false, config.FlagDescVersion)

	root.AddCommand(
		NewCheckCmd(app),
		NewServeCmd(app),
		NewStatusCmd(app),
		NewInitCmd(app),
		NewImportCmd(app),
	)
	return root
}

func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}
