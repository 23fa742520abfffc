package tree

import (
	"slices"
	"strings"
)

// Path is the chain of node ids from the root down to a target, inclusive.
type Path []string

// Parent returns the path of the containing folder. The parent of a
// top-level node is the empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the id of the addressed node.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path extended by id. The receiver is never aliased.
func (p Path) Child(id string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// Equal reports whether both paths name the same ids in the same order.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// FindByPath walks nodes one path segment per level. It fails when a
// segment does not match a child id or when the path descends through a
// request.
func FindByPath(nodes []*Node, path Path) (*Node, bool) {
	if len(path) == 0 {
		return nil, false
	}
	level := nodes
	var current *Node
	for i, id := range path {
		if i > 0 {
			if !current.IsFolder() {
				return nil, false
			}
			level = current.Children
		}
		idx := indexOf(level, id)
		if idx < 0 {
			return nil, false
		}
		current = level[idx]
	}
	return current, true
}

// UpdateByPath returns a tree where the node at path is replaced by n.
// Ancestors along the path are copied, everything else is shared.
// An unresolved path, or a replacement that would duplicate an id held
// elsewhere in the tree, returns nodes unchanged.
func UpdateByPath(nodes []*Node, path Path, n *Node) []*Node {
	if n == nil {
		return nodes
	}
	old, ok := FindByPath(nodes, path)
	if !ok {
		return nodes
	}
	outside := idSet(nodes)
	for _, id := range IDs([]*Node{old}) {
		delete(outside, id)
	}
	if collides(outside, n) {
		return nodes
	}
	out, _ := rewrite(nodes, path, func(siblings []*Node, i int) []*Node {
		return replaceAt(siblings, i, n)
	})
	return out
}

// RemoveByPath returns a tree without the node at path and its subtree.
// An unresolved path returns nodes unchanged.
func RemoveByPath(nodes []*Node, path Path) []*Node {
	out, _ := rewrite(nodes, path, removeAt)
	return out
}

// InsertAtPath places n next to the context node addressed by path.
// An empty path prepends n at the root; otherwise n lands immediately after
// the context node among its siblings. Unresolved context paths and
// duplicate ids leave nodes unchanged.
func InsertAtPath(nodes []*Node, path Path, n *Node) []*Node {
	if n == nil || collides(idSet(nodes), n) {
		return nodes
	}
	if len(path) == 0 {
		return insertAt(nodes, 0, n)
	}
	out, _ := rewrite(nodes, path, func(siblings []*Node, i int) []*Node {
		return insertAt(siblings, i+1, n)
	})
	return out
}

// FilterTree keeps nodes whose name contains query, ignoring case. Folders
// survive when they match or still hold a matching descendant, and keep only
// their matching descendants. An empty query returns nodes unchanged.
func FilterTree(nodes []*Node, query string) []*Node {
	if query == "" {
		return nodes
	}
	return filterLevel(nodes, strings.ToLower(query))
}

func filterLevel(nodes []*Node, query string) []*Node {
	var out []*Node
	for _, n := range nodes {
		matched := strings.Contains(strings.ToLower(n.Name), query)
		if !n.IsFolder() {
			if matched {
				out = append(out, n)
			}
			continue
		}
		children := filterLevel(n.Children, query)
		if matched || len(children) > 0 {
			clone := n.shallowCopy()
			clone.Children = children
			out = append(out, clone)
		}
	}
	return out
}

// rewrite applies fn to the sibling slice holding the last path segment and
// rebuilds every ancestor on the way back up.
func rewrite(nodes []*Node, path Path, fn func(siblings []*Node, i int) []*Node) ([]*Node, bool) {
	if len(path) == 0 {
		return nodes, false
	}
	i := indexOf(nodes, path[0])
	if i < 0 {
		return nodes, false
	}
	if len(path) == 1 {
		return fn(nodes, i), true
	}
	parent := nodes[i]
	if !parent.IsFolder() {
		return nodes, false
	}
	children, ok := rewrite(parent.Children, path[1:], fn)
	if !ok {
		return nodes, false
	}
	clone := parent.shallowCopy()
	clone.Children = children
	return replaceAt(nodes, i, clone), true
}

func indexOf(nodes []*Node, id string) int {
	for i, n := range nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func replaceAt(nodes []*Node, i int, n *Node) []*Node {
	out := slices.Clone(nodes)
	out[i] = n
	return out
}

func removeAt(nodes []*Node, i int) []*Node {
	if len(nodes) == 1 {
		return nil
	}
	out := make([]*Node, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...)
}

func insertAt(nodes []*Node, i int, n *Node) []*Node {
	out := make([]*Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}

func idSet(nodes []*Node) map[string]bool {
	set := make(map[string]bool)
	Walk(nodes, func(n *Node, _ int) bool {
		set[n.ID] = true
		return true
	})
	return set
}

// collides reports whether n's subtree reuses an id from taken or repeats
// an id within itself.
func collides(taken map[string]bool, n *Node) bool {
	seen := make(map[string]bool)
	dup := false
	Walk([]*Node{n}, func(c *Node, _ int) bool {
		if taken[c.ID] || seen[c.ID] {
			dup = true
			return false
		}
		seen[c.ID] = true
		return true
	})
	return dup
}
