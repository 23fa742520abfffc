package tree

import "fmt"

// FlattenedItem is one row of the depth-first projection of a tree.
type FlattenedItem struct {
	Node *Node
	// ParentID is empty for top-level items.
	ParentID string
	Depth    int
	// Index is the position assigned by Flatten. It is not renumbered by
	// RemoveCollapsedSubtrees or ArrayMove.
	Index int
	Path  Path
}

// ID returns the id of the projected node.
func (f FlattenedItem) ID() string {
	if f.Node == nil {
		return ""
	}
	return f.Node.ID
}

// Flatten emits every node in pre-order, parents before their children.
func Flatten(nodes []*Node) []FlattenedItem {
	var out []FlattenedItem
	var visit func(level []*Node, parentID string, depth int, prefix Path)
	visit = func(level []*Node, parentID string, depth int, prefix Path) {
		for _, n := range level {
			path := prefix.Child(n.ID)
			out = append(out, FlattenedItem{
				Node:     n,
				ParentID: parentID,
				Depth:    depth,
				Index:    len(out),
				Path:     path,
			})
			if n.IsFolder() {
				visit(n.Children, n.ID, depth+1, path)
			}
		}
	}
	visit(nodes, "", 0, nil)
	return out
}

// RemoveCollapsedSubtrees drops every descendant of the given ids. Removal is
// transitive: a hidden folder hides its own children too.
func RemoveCollapsedSubtrees(items []FlattenedItem, ids ...string) []FlattenedItem {
	if len(ids) == 0 {
		return items
	}
	excluded := make(map[string]bool, len(ids))
	for _, id := range ids {
		excluded[id] = true
	}
	out := make([]FlattenedItem, 0, len(items))
	for _, item := range items {
		if item.ParentID != "" && excluded[item.ParentID] {
			excluded[item.ID()] = true
			continue
		}
		out = append(out, item)
	}
	return out
}

// Rebuild reconstructs the nested tree from ParentID links. Siblings keep
// their order of appearance in items. Items whose parent is missing, is a
// request, or lies on a parent cycle are placed at the root.
func Rebuild(items []FlattenedItem) []*Node {
	nodes, _ := rebuild(items, false)
	return nodes
}

// RebuildStrict is Rebuild without the repair: a missing parent yields
// ErrOrphanedItem and a request or cyclic parent yields ErrInvalidParent.
func RebuildStrict(items []FlattenedItem) ([]*Node, error) {
	return rebuild(items, true)
}

func rebuild(items []FlattenedItem, strict bool) ([]*Node, error) {
	copies := make(map[string]*Node, len(items))
	parents := make(map[string]string, len(items))
	for _, item := range items {
		n := item.Node.shallowCopy()
		n.Children = nil
		copies[n.ID] = n
		parents[n.ID] = item.ParentID
	}

	root := &Node{Kind: KindFolder}
	for _, item := range items {
		n := copies[item.ID()]
		parent := root
		if item.ParentID != "" {
			p, ok := copies[item.ParentID]
			switch {
			case !ok:
				if strict {
					return nil, fmt.Errorf("%w: %s has unknown parent %s", ErrOrphanedItem, n.ID, item.ParentID)
				}
			case !p.IsFolder() || cyclic(parents, n.ID):
				if strict {
					return nil, fmt.Errorf("%w: %s cannot live under %s", ErrInvalidParent, n.ID, item.ParentID)
				}
			default:
				parent = p
			}
		}
		parent.Children = append(parent.Children, n)
	}
	return root.Children, nil
}

// cyclic reports whether following parent links from id returns to id.
func cyclic(parents map[string]string, id string) bool {
	seen := map[string]bool{id: true}
	for cur := parents[id]; cur != ""; cur = parents[cur] {
		if seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}

// CountDescendants returns how many nodes live below id, at any depth.
// Unknown ids and requests count zero.
func CountDescendants(nodes []*Node, id string) int {
	n, ok := FindByID(nodes, id)
	if !ok || !n.IsFolder() {
		return 0
	}
	return countChildren(n.Children)
}

func countChildren(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		count++
		if n.IsFolder() {
			count += countChildren(n.Children)
		}
	}
	return count
}
