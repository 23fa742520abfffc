package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

func newFindCommand(opts *globalOptions) *cobra.Command {
	var useFuzzy bool

	cmd := &cobra.Command{
		Use:   "find QUERY",
		Short: "Find folders and requests by name",
		Long: `Find folders and requests by name. Without --fuzzy the tree is filtered
by a case-insensitive substring and printed with the folders that lead to
each match. With --fuzzy every node path is ranked against the query.

Examples:
  postbox find login
  postbox find --fuzzy athlgn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				out := cmd.OutOrStdout()
				if useFuzzy {
					nodes, err := a.Store().Tree(coll.ID)
					if err != nil {
						return err
					}
					return printFuzzy(out, nodes, args[0])
				}

				matches, err := a.Store().Filter(coll.ID, args[0])
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return fmt.Errorf("no match for %q", args[0])
				}
				printTree(out, matches, a.Store().Indentation(), false)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&useFuzzy, "fuzzy", false, "Rank node paths by fuzzy match")
	return cmd
}

// nodePaths lists "a/b/c" name paths for every node in pre-order.
func nodePaths(nodes []*tree.Node) []string {
	var paths []string
	var prefix []string
	tree.Walk(nodes, func(n *tree.Node, depth int) bool {
		prefix = append(prefix[:depth], n.Name)
		paths = append(paths, strings.Join(prefix, "/"))
		return true
	})
	return paths
}

func printFuzzy(w io.Writer, nodes []*tree.Node, query string) error {
	matches := fuzzy.Find(query, nodePaths(nodes))
	if len(matches) == 0 {
		return fmt.Errorf("no match for %q", query)
	}
	for _, m := range matches {
		fmt.Fprintln(w, m.Str)
	}
	return nil
}
