package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/exporter"
	"github.com/artpar/postbox/internal/workspace"
)

func newCurlCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "curl PATH",
		Short: "Print a saved request as a curl command",
		Long: `Print a saved request as a curl command that can be pasted into a shell.

Examples:
  postbox curl auth/login
  postbox curl health | sh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				path, err := resolvePath(a.Store(), coll.ID, args[0])
				if err != nil {
					return err
				}
				n, err := a.Store().Find(coll.ID, path)
				if err != nil {
					return err
				}
				if n.IsFolder() || n.Request == nil {
					return fmt.Errorf("%s is a folder", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), exporter.Curl(n.Request))
				return nil
			})
		},
	}
}
