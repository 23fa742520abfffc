package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCookiesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cookies",
		Short: "List or clear stored cookies",
	}
	cmd.AddCommand(newCookiesListCommand(opts), newCookiesClearCommand(opts))
	return cmd
}

func newCookiesListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [DOMAIN]",
		Short: "List live cookies, optionally for one domain and its subdomains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			domain := ""
			if len(args) == 1 {
				domain = args[0]
			}
			list, err := a.Cookies().List(cmd.Context(), domain)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cookies")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tPATH\tNAME\tVALUE\tEXPIRES")
			for _, c := range list {
				expires := "session"
				if !c.Session() {
					expires = c.Expires.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Domain, c.Path, c.Name, c.Value, expires)
			}
			return w.Flush()
		},
	}
}

func newCookiesClearCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [DOMAIN]",
		Short: "Forget cookies of one domain, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				if err := a.Cookies().Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all cookies")
				return nil
			}
			n, err := a.Cookies().ClearDomain(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cookies for %s\n", n, args[0])
			return nil
		},
	}
}
