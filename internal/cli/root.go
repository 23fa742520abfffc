package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/tui/views"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	dataDir    string
	backend    string
	collection string
	timeout    time.Duration
	debug      bool
}

// NewRootCommand creates the root command. Without a subcommand it opens
// the terminal UI.
func NewRootCommand(version string) *cobra.Command {
	defaults := app.DefaultConfig()
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "postbox",
		Short:         "postbox - a terminal API client",
		Long:          "postbox organizes HTTP requests into projects, collections and folders, and sends them from a terminal UI or the command line.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", defaults.DataDir, "Directory holding state, cookies and logs (env "+app.EnvDataDir+")")
	flags.StringVar(&opts.backend, "backend", defaults.Backend, "State backend: file or sqlite (env "+app.EnvBackend+")")
	flags.StringVarP(&opts.collection, "collection", "c", "", "Collection name or id (default: first collection of the active project)")
	flags.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Request timeout")
	flags.BoolVar(&opts.debug, "debug", false, "Log at debug level")

	cmd.AddCommand(
		newTreeCommand(opts),
		newMkdirCommand(opts),
		newNewCommand(opts),
		newRenameCommand(opts),
		newRmCommand(opts),
		newMvCommand(opts),
		newFindCommand(opts),
		newSendCommand(opts),
		newCurlCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newCookiesCommand(opts),
		newHistoryCommand(opts),
	)
	return cmd
}

// config turns the flags into an app configuration.
func (o *globalOptions) config() app.Config {
	cfg := app.DefaultConfig()
	cfg.DataDir = o.dataDir
	cfg.Backend = o.backend
	cfg.Timeout = o.timeout
	cfg.Debug = o.debug
	return cfg
}

func (o *globalOptions) open(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), app.WithConfig(o.config()))
}

// runTUI starts the terminal UI over the saved workspace.
func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	a, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.collection != "" {
		coll, err := resolveCollection(a.Store(), opts.collection)
		if err != nil {
			return err
		}
		if err := a.Store().Select(coll.ID, nil); err != nil {
			return err
		}
	}

	main := views.NewMainView(a.Store(), a,
		views.WithLogger(a.Logger()),
		views.WithSendTimeout(opts.timeout))
	p := tea.NewProgram(views.Model{Main: main}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return a.Save(cmd.Context())
}
