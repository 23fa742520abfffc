package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

// resolveCollection finds a collection by id or name. The active project is
// searched first. An empty name picks the first collection of the active
// project.
func resolveCollection(store workspace.Store, nameOrID string) (*workspace.Collection, error) {
	active, ok := store.ActiveProject()
	if nameOrID == "" {
		if !ok || len(active.Collections) == 0 {
			return nil, fmt.Errorf("no collection in the active project")
		}
		return active.Collections[0], nil
	}

	projects := store.Projects()
	if ok {
		projects = append([]*workspace.Project{active}, projects...)
	}
	for _, p := range projects {
		for _, c := range p.Collections {
			if c.ID == nameOrID || c.Name == nameOrID {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("collection %q not found", nameOrID)
}

// resolvePath turns "a/b/c" into an id path. Each segment matches a child
// id first, then a child name.
func resolvePath(store workspace.Store, collectionID, raw string) (tree.Path, error) {
	nodes, err := store.Tree(collectionID)
	if err != nil {
		return nil, err
	}
	var path tree.Path
	for _, segment := range splitPath(raw) {
		n := matchChild(nodes, segment)
		if n == nil {
			return nil, fmt.Errorf("%q: %w", raw, tree.ErrPathNotFound)
		}
		path = append(path, n.ID)
		nodes = n.Children
	}
	return path, nil
}

func splitPath(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, "/") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func matchChild(nodes []*tree.Node, segment string) *tree.Node {
	for _, n := range nodes {
		if n.ID == segment {
			return n
		}
	}
	for _, n := range nodes {
		if n.Name == segment {
			return n
		}
	}
	return nil
}

// namePath renders an id path as "a/b/c" using node names.
func namePath(nodes []*tree.Node, path tree.Path) string {
	names := make([]string, 0, len(path))
	for _, id := range path {
		n := matchChild(nodes, id)
		if n == nil {
			names = append(names, id)
			break
		}
		names = append(names, n.Name)
		nodes = n.Children
	}
	return strings.Join(names, "/")
}

// splitParent separates "a/b/name" into the parent path and the last
// segment.
func splitParent(raw string) (string, string) {
	segments := splitPath(raw)
	if len(segments) == 0 {
		return "", ""
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1]
}

// withCollection opens the app, resolves the --collection flag and runs
// fn. The workspace is saved once fn succeeds.
func (o *globalOptions) withCollection(cmd *cobra.Command, fn func(a *app.App, coll *workspace.Collection) error) error {
	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	coll, err := resolveCollection(a.Store(), o.collection)
	if err != nil {
		return err
	}
	if err := fn(a, coll); err != nil {
		return err
	}
	return a.Save(cmd.Context())
}
