package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

func newTreeCommand(opts *globalOptions) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the collection tree",
		Long: `Print the folders and requests of a collection.

Examples:
  postbox tree
  postbox tree -c "Billing API" --ids`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				nodes, err := a.Store().Tree(coll.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, coll.Name)
				if len(nodes) == 0 {
					fmt.Fprintln(out, "  (empty)")
					return nil
				}
				printTree(out, nodes, a.Store().Indentation(), showIDs)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show node ids")
	return cmd
}

// printTree writes one line per node, indented by depth.
func printTree(w io.Writer, nodes []*tree.Node, indentation int, showIDs bool) {
	tree.Walk(nodes, func(n *tree.Node, depth int) bool {
		indent := strings.Repeat(" ", indentation*(depth+1))
		fmt.Fprintf(w, "%s%s", indent, nodeLine(n))
		if showIDs {
			fmt.Fprintf(w, "  [%s]", n.ID)
		}
		fmt.Fprintln(w)
		return true
	})
}

func nodeLine(n *tree.Node) string {
	if n.IsFolder() {
		count := tree.CountDescendants([]*tree.Node{n}, n.ID)
		if count > 0 {
			return fmt.Sprintf("%s/ (%d)", n.Name, count)
		}
		return n.Name + "/"
	}
	if n.Request == nil {
		return n.Name
	}
	line := fmt.Sprintf("%-7s %s", n.Request.Method, n.Name)
	if url := n.Request.FullURL(); url != "" {
		line += "  " + url
	}
	return line
}
