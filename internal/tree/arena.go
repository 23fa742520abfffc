package tree

import (
	"fmt"
	"slices"
)

// Arena stores a tree as id-keyed records plus explicit parent and ordered
// children indexes, so path-addressed edits touch only the records on the
// path instead of copying subtrees. The root level is keyed by "".
//
// Unlike the pure functions in this package, Arena reports unresolved paths
// with ErrPathNotFound.
type Arena struct {
	records  map[string]*Node
	parent   map[string]string
	children map[string][]string
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		records:  make(map[string]*Node),
		parent:   make(map[string]string),
		children: make(map[string][]string),
	}
}

// Load replaces the arena contents with nodes.
func (a *Arena) Load(nodes []*Node) error {
	next := NewArena()
	for _, n := range nodes {
		if err := next.add(n, ""); err != nil {
			return err
		}
	}
	*a = *next
	return nil
}

func (a *Arena) add(n *Node, parentID string) error {
	if _, exists := a.records[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	rec := n.shallowCopy()
	rec.Children = nil
	a.records[n.ID] = rec
	a.parent[n.ID] = parentID
	a.children[parentID] = append(a.children[parentID], n.ID)
	if n.IsFolder() {
		for _, child := range n.Children {
			if err := a.add(child, n.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int {
	return len(a.records)
}

// Has reports whether id is present.
func (a *Arena) Has(id string) bool {
	_, ok := a.records[id]
	return ok
}

// Path returns the root-to-node id chain for id.
func (a *Arena) Path(id string) (Path, bool) {
	if !a.Has(id) {
		return nil, false
	}
	var rev Path
	for cur := id; cur != ""; cur = a.parent[cur] {
		rev = append(rev, cur)
	}
	slices.Reverse(rev)
	return rev, true
}

// Resolve returns the id addressed by path after checking that every
// segment matches the stored ancestry.
func (a *Arena) Resolve(path Path) (string, error) {
	id := path.Last()
	actual, ok := a.Path(id)
	if len(path) == 0 || !ok || !actual.Equal(path) {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return id, nil
}

// Get returns a materialized copy of the subtree rooted at id.
func (a *Arena) Get(id string) (*Node, bool) {
	if !a.Has(id) {
		return nil, false
	}
	return a.materialize(id), true
}

// Find returns a materialized copy of the subtree addressed by path.
func (a *Arena) Find(path Path) (*Node, bool) {
	id, err := a.Resolve(path)
	if err != nil {
		return nil, false
	}
	return a.materialize(id), true
}

// Nodes materializes the whole tree. Request definitions are shared with the
// arena, which never edits one in place.
func (a *Arena) Nodes() []*Node {
	return a.materializeAll(a.children[""])
}

func (a *Arena) materializeAll(ids []string) []*Node {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = a.materialize(id)
	}
	return out
}

func (a *Arena) materialize(id string) *Node {
	n := a.records[id].shallowCopy()
	if n.IsFolder() {
		n.Children = a.materializeAll(a.children[id])
	}
	return n
}

// Update edits the node at path in place. fn receives a detached copy
// without children; its ID and Kind are restored afterwards.
func (a *Arena) Update(path Path, fn func(n *Node)) error {
	id, err := a.Resolve(path)
	if err != nil {
		return err
	}
	rec := a.records[id].shallowCopy()
	fn(rec)
	rec.ID = id
	rec.Kind = a.records[id].Kind
	rec.Children = nil
	a.records[id] = rec
	return nil
}

// Remove deletes the node at path and its whole subtree.
func (a *Arena) Remove(path Path) error {
	id, err := a.Resolve(path)
	if err != nil {
		return err
	}
	parentID := a.parent[id]
	a.children[parentID] = without(a.children[parentID], id)
	a.drop(id)
	return nil
}

func (a *Arena) drop(id string) {
	for _, child := range a.children[id] {
		a.drop(child)
	}
	delete(a.children, id)
	delete(a.parent, id)
	delete(a.records, id)
}

// Insert places n after the context node at path, or first at the root for
// an empty path.
func (a *Arena) Insert(path Path, n *Node) error {
	parentID, index := "", 0
	if len(path) > 0 {
		id, err := a.Resolve(path)
		if err != nil {
			return err
		}
		parentID = a.parent[id]
		index = slices.Index(a.children[parentID], id) + 1
	}
	return a.attach(n, parentID, index)
}

// Append adds n as the last child of folder parentID ("" for the root).
func (a *Arena) Append(parentID string, n *Node) error {
	if parentID != "" {
		parent, ok := a.records[parentID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrPathNotFound, parentID)
		}
		if !parent.IsFolder() {
			return fmt.Errorf("%w: %q is a request", ErrInvalidParent, parent.Name)
		}
	}
	return a.attach(n, parentID, len(a.children[parentID]))
}

func (a *Arena) attach(n *Node, parentID string, index int) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidParent)
	}
	if a.collides(n) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	if err := a.add(n, parentID); err != nil {
		return err
	}
	// add appended n; shift it to index.
	siblings := without(a.children[parentID], n.ID)
	a.children[parentID] = slices.Insert(siblings, min(index, len(siblings)), n.ID)
	return nil
}

// Move relocates id under parentID at the given sibling index. The subtree
// travels with it.
func (a *Arena) Move(id, parentID string, index int) error {
	if !a.Has(id) {
		return fmt.Errorf("%w: %s", ErrPathNotFound, id)
	}
	if parentID != "" {
		parent, ok := a.records[parentID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrPathNotFound, parentID)
		}
		if !parent.IsFolder() {
			return fmt.Errorf("%w: %q is a request", ErrInvalidParent, parent.Name)
		}
		if path, _ := a.Path(parentID); slices.Contains(path, id) {
			return fmt.Errorf("%w: %q is inside the moved folder", ErrInvalidParent, parent.Name)
		}
	}
	old := a.parent[id]
	a.children[old] = without(a.children[old], id)
	siblings := a.children[parentID]
	index = max(0, min(index, len(siblings)))
	a.children[parentID] = slices.Insert(siblings, index, id)
	a.parent[id] = parentID
	return nil
}

// collides reports whether an id in n's subtree is already stored or
// repeats within the subtree. Only the subtree is walked.
func (a *Arena) collides(n *Node) bool {
	seen := make(map[string]bool)
	dup := false
	Walk([]*Node{n}, func(c *Node, _ int) bool {
		if _, ok := a.records[c.ID]; ok || seen[c.ID] {
			dup = true
			return false
		}
		seen[c.ID] = true
		return true
	})
	return dup
}

func without(ids []string, id string) []string {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids
	}
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}
