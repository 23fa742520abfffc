package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/importer"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

// ErrInvalidMove is returned when mv cannot place the item where asked.
var ErrInvalidMove = errors.New("invalid move")

// placement decides where a new node goes: inside the parent of the given
// path, or right after --after.
type placement struct {
	after string
}

func (p *placement) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.after, "after", "", "Place the new node after this path instead of at the end of its parent")
}

func (p *placement) create(store workspace.Store, collectionID, raw string, n *tree.Node) error {
	if p.after != "" {
		after, err := resolvePath(store, collectionID, p.after)
		if err != nil {
			return err
		}
		return store.Create(collectionID, after, n)
	}
	parentRaw, _ := splitParent(raw)
	parent, err := resolvePath(store, collectionID, parentRaw)
	if err != nil {
		return err
	}
	return store.CreateInside(collectionID, parent, n)
}

func newMkdirCommand(opts *globalOptions) *cobra.Command {
	place := &placement{}

	cmd := &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a folder",
		Long: `Create a folder. The last path segment is the folder name.

Examples:
  postbox mkdir auth
  postbox mkdir auth/tokens
  postbox mkdir archive --after auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, name := splitParent(args[0])
			if name == "" {
				return fmt.Errorf("folder name is required")
			}
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				n := tree.NewFolder(name)
				if err := place.create(a.Store(), coll.ID, args[0], n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s\n", name)
				return nil
			})
		},
	}

	place.addFlags(cmd)
	return cmd
}

type newOptions struct {
	placement
	method string
	url    string
	curl   string
	docs   string
}

func newNewCommand(opts *globalOptions) *cobra.Command {
	o := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new PATH",
		Short: "Create a request",
		Long: `Create a request. The last path segment is the request name.

Examples:
  postbox new health --url https://api.example.com/health
  postbox new auth/login -X POST --url https://api.example.com/login
  postbox new auth/me --curl "curl -H 'Authorization: Bearer t' https://api.example.com/me"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, name := splitParent(args[0])
			if name == "" {
				return fmt.Errorf("request name is required")
			}
			def, err := o.definition()
			if err != nil {
				return err
			}
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				n := tree.NewRequest(name, def)
				if err := o.create(a.Store(), coll.ID, args[0], n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created request %s\n", name)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&o.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVar(&o.url, "url", "", "Request URL")
	cmd.Flags().StringVar(&o.curl, "curl", "", "Build the request from a curl command")
	cmd.Flags().StringVar(&o.docs, "docs", "", "Markdown documentation for the request")
	o.addFlags(cmd)
	return cmd
}

func (o *newOptions) definition() (*core.RequestDefinition, error) {
	var def *core.RequestDefinition
	if o.curl != "" {
		_, parsed, err := importer.ParseCurl(o.curl)
		if err != nil {
			return nil, err
		}
		def = parsed
	} else {
		def = core.NewRequestDefinition(o.method, o.url)
		if !slices.Contains(core.Methods, def.Method) {
			return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedMethod, def.Method)
		}
	}
	def.Docs = o.docs
	return def, nil
}

func newRenameCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename PATH NAME",
		Short: "Rename a folder or request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				path, err := resolvePath(a.Store(), coll.ID, args[0])
				if err != nil {
					return err
				}
				if err := a.Store().Rename(coll.ID, path, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func newRmCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm PATH",
		Aliases: []string{"delete"},
		Short:   "Delete a folder or request with everything below it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				store := a.Store()
				path, err := resolvePath(store, coll.ID, args[0])
				if err != nil {
					return err
				}
				count := store.Descendants(coll.ID, path.Last())
				if err := store.Delete(coll.ID, path); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if count > 0 {
					fmt.Fprintf(out, "Deleted %s and %d nested items\n", args[0], count)
				} else {
					fmt.Fprintf(out, "Deleted %s\n", args[0])
				}
				return nil
			})
		},
	}
}

type mvOptions struct {
	over   string
	offset int
}

func newMvCommand(opts *globalOptions) *cobra.Command {
	o := &mvOptions{}

	cmd := &cobra.Command{
		Use:   "mv PATH --over PATH [--offset N]",
		Short: "Move a folder or request",
		Long: `Move an item the way dragging it in the tree does. The item lands on
the row of --over; --offset shifts it left or right by whole depth levels,
nesting it under the item above or lifting it out of its folder.

Examples:
  postbox mv health --over auth/login
  postbox mv auth/me --over health --offset -1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.over == "" {
				return fmt.Errorf("--over is required")
			}
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				store := a.Store()
				active, err := resolvePath(store, coll.ID, args[0])
				if err != nil {
					return err
				}
				over, err := resolvePath(store, coll.ID, o.over)
				if err != nil {
					return err
				}

				offset := float64(o.offset * store.Indentation())
				p, ok := store.Projection(coll.ID, active.Last(), over.Last(), offset)
				if !ok {
					return fmt.Errorf("%w: %s is not a visible row", ErrInvalidMove, o.over)
				}
				if err := store.MoveItem(coll.ID, active.Last(), over.Last(), p); err != nil {
					return fmt.Errorf("%w: %w", ErrInvalidMove, err)
				}

				nodes, err := store.Tree(coll.ID)
				if err != nil {
					return err
				}
				moved, err := store.PathOf(coll.ID, active.Last())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s (depth %d)\n", namePath(nodes, moved), p.Depth)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&o.over, "over", "", "Path of the row to drop onto")
	cmd.Flags().IntVar(&o.offset, "offset", 0, "Horizontal offset in depth levels")
	return cmd
}
