package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/history"
	"github.com/artpar/postbox/internal/tui/components"
)

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var (
		q     history.Query
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sent requests",
		Long: `Show recently sent requests, newest first.

Examples:
  postbox history
  postbox history --method POST --limit 5
  postbox history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if clearAll {
				if err := a.History().Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "History cleared")
				return nil
			}

			entries, err := a.History().List(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tMETHOD\tSTATUS\tTIME\tSIZE\tURL")
			for _, e := range entries {
				status := strconv.Itoa(e.Status)
				if e.Failed() {
					status = "error"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Method, status,
					components.FormatDuration(e.Elapsed),
					components.FormatSize(int(e.Size)),
					e.URL)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&q.Method, "method", "", "Only show this HTTP method")
	cmd.Flags().StringVar(&q.URLPrefix, "url", "", "Only show URLs starting with this prefix")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete the history")
	return cmd
}
