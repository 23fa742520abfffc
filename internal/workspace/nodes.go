package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
)

// Tree returns a copy of the collection tree.
func (w *Workspace) Tree(collectionID string) ([]*tree.Node, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, err := w.arena(collectionID)
	if err != nil {
		return nil, err
	}
	return a.Nodes(), nil
}

// Flattened returns the interactive list for a collection: the pre-order
// projection with the children of collapsed folders hidden.
func (w *Workspace) Flattened(collectionID string) ([]tree.FlattenedItem, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, err := w.arena(collectionID)
	if err != nil {
		return nil, err
	}
	return tree.RemoveCollapsedSubtrees(tree.Flatten(a.Nodes()), w.collapsedIDs()...), nil
}

func (w *Workspace) collapsedIDs() []string {
	ids := make([]string, 0, len(w.collapsed))
	for id, collapsed := range w.collapsed {
		if collapsed {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Filter returns the tree reduced to names matching query.
func (w *Workspace) Filter(collectionID, query string) ([]*tree.Node, error) {
	nodes, err := w.Tree(collectionID)
	if err != nil {
		return nil, err
	}
	return tree.FilterTree(nodes, query), nil
}

// Find returns a copy of the node at path.
func (w *Workspace) Find(collectionID string, path tree.Path) (*tree.Node, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, err := w.arena(collectionID)
	if err != nil {
		return nil, err
	}
	n, ok := a.Find(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tree.ErrPathNotFound, path)
	}
	return n, nil
}

// PathOf returns the id path of nodeID.
func (w *Workspace) PathOf(collectionID, nodeID string) (tree.Path, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, err := w.arena(collectionID)
	if err != nil {
		return nil, err
	}
	p, ok := a.Path(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tree.ErrPathNotFound, nodeID)
	}
	return p, nil
}

// Descendants counts the nodes below nodeID, for badges.
func (w *Workspace) Descendants(collectionID, nodeID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, err := w.arena(collectionID)
	if err != nil {
		return 0
	}
	return tree.CountDescendants(a.Nodes(), nodeID)
}

var errNilNode = fmt.Errorf("create: %w: nil node", tree.ErrInvalidParent)

// Create inserts n after the context node, or first at the root when
// context is empty.
func (w *Workspace) Create(collectionID string, context tree.Path, n *tree.Node) error {
	if n == nil {
		return errNilNode
	}
	return w.mutate(Event{Kind: EventTreeChanged, CollectionID: collectionID, NodeID: n.ID}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		if err := a.Insert(context, n); err != nil {
			return fmt.Errorf("create %q: %w", n.Name, err)
		}
		return nil
	})
}

// CreateInside appends n as the last child of the folder at path.
func (w *Workspace) CreateInside(collectionID string, folder tree.Path, n *tree.Node) error {
	if n == nil {
		return errNilNode
	}
	return w.mutate(Event{Kind: EventTreeChanged, CollectionID: collectionID, NodeID: n.ID}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		parentID := ""
		if len(folder) > 0 {
			if parentID, err = a.Resolve(folder); err != nil {
				return fmt.Errorf("create %q: %w", n.Name, err)
			}
		}
		if err := a.Append(parentID, n); err != nil {
			return fmt.Errorf("create %q: %w", n.Name, err)
		}
		if parentID != "" {
			delete(w.collapsed, parentID)
		}
		return nil
	})
}

// Rename renames the node at path.
func (w *Workspace) Rename(collectionID string, path tree.Path, name string) error {
	return w.mutate(Event{Kind: EventTreeChanged, CollectionID: collectionID, NodeID: path.Last()}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		if err := a.Update(path, func(n *tree.Node) { n.Name = name }); err != nil {
			w.logger.Debug("rename on stale path", slog.String("path", path.String()))
			return fmt.Errorf("rename: %w", err)
		}
		return nil
	})
}

// Delete removes the node at path with its subtree, and forgets any
// selection, collapse flag or response that belonged to it.
func (w *Workspace) Delete(collectionID string, path tree.Path) error {
	return w.mutate(Event{Kind: EventTreeChanged, CollectionID: collectionID, NodeID: path.Last()}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		doomed, ok := a.Find(path)
		if !ok {
			w.logger.Debug("delete on stale path", slog.String("path", path.String()))
			return fmt.Errorf("delete: %w: %s", tree.ErrPathNotFound, path)
		}
		if err := a.Remove(path); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		for _, id := range tree.IDs([]*tree.Node{doomed}) {
			delete(w.collapsed, id)
			delete(w.responses, id)
		}
		if w.selection.CollectionID == collectionID && hasPrefix(w.selection.Path, path) {
			w.selection = Selection{}
		}
		return nil
	})
}

// EditRequest applies edits to a copy of the request at path and stores the
// copy only if every edit succeeds.
func (w *Workspace) EditRequest(collectionID string, path tree.Path, edits ...RequestEdit) error {
	return w.mutate(Event{Kind: EventRequestEdited, CollectionID: collectionID, NodeID: path.Last()}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		id, err := a.Resolve(path)
		if err != nil {
			return fmt.Errorf("edit request: %w", err)
		}
		n, _ := a.Get(id)
		if n.IsFolder() || n.Request == nil {
			return fmt.Errorf("edit request: %w: %q", ErrNotARequest, n.Name)
		}
		def := n.Request.Clone()
		for _, edit := range edits {
			if err := edit(def); err != nil {
				return fmt.Errorf("edit request %q: %w", n.Name, err)
			}
		}
		return a.Update(path, func(n *tree.Node) { n.Request = def })
	})
}

// Projection computes the drop preview using the configured indentation.
// The list is the interactive one, with the active item's own subtree
// hidden as while dragging.
func (w *Workspace) Projection(collectionID, activeID, overID string, offset float64) (tree.Projection, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, err := w.arena(collectionID)
	if err != nil {
		return tree.Projection{}, false
	}
	hidden := append(w.collapsedIDs(), activeID)
	items := tree.RemoveCollapsedSubtrees(tree.Flatten(a.Nodes()), hidden...)
	return tree.GetProjection(items, activeID, overID, offset, w.indentation)
}

// Indentation returns the width of one depth level.
func (w *Workspace) Indentation() int {
	return w.indentation
}

// MoveItem commits a projection. A rejected move leaves the tree as it was.
func (w *Workspace) MoveItem(collectionID, activeID, overID string, p tree.Projection) error {
	return w.mutate(Event{Kind: EventTreeChanged, CollectionID: collectionID, NodeID: activeID}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		moved, err := tree.CommitMove(a.Nodes(), activeID, overID, p)
		if err != nil {
			if errors.Is(err, tree.ErrInvalidParent) {
				w.logger.Debug("move rejected",
					slog.String("active", activeID),
					slog.String("parent", p.ParentID))
			}
			return fmt.Errorf("move: %w", err)
		}
		if err := a.Load(moved); err != nil {
			return fmt.Errorf("move: %w", err)
		}
		if w.selection.CollectionID == collectionID {
			if path, ok := a.Path(w.selection.Path.Last()); ok {
				w.selection.Path = path
			}
		}
		return nil
	})
}

// Selection

// Select marks the node at path as selected.
func (w *Workspace) Select(collectionID string, path tree.Path) error {
	return w.mutate(Event{Kind: EventSelectionChanged, CollectionID: collectionID, NodeID: path.Last()}, func() error {
		a, err := w.arena(collectionID)
		if err != nil {
			return err
		}
		if len(path) > 0 {
			if _, err := a.Resolve(path); err != nil {
				return fmt.Errorf("select: %w", err)
			}
		}
		w.selection = Selection{CollectionID: collectionID, Path: slices.Clone(path)}
		return nil
	})
}

// Selection returns the current selection, zero when nothing is selected.
func (w *Workspace) Selection() Selection {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Selection{CollectionID: w.selection.CollectionID, Path: slices.Clone(w.selection.Path)}
}

// Presentation state

// SetCollapsed hides or shows a folder's children in Flattened.
func (w *Workspace) SetCollapsed(nodeID string, collapsed bool) {
	w.mu.Lock()
	if collapsed {
		w.collapsed[nodeID] = true
	} else {
		delete(w.collapsed, nodeID)
	}
	w.mu.Unlock()
	w.emit(Event{Kind: EventViewChanged, NodeID: nodeID})
}

// ToggleCollapsed flips the flag and returns the new value.
func (w *Workspace) ToggleCollapsed(nodeID string) bool {
	collapsed := !w.IsCollapsed(nodeID)
	w.SetCollapsed(nodeID, collapsed)
	return collapsed
}

// IsCollapsed reports whether nodeID is collapsed.
func (w *Workspace) IsCollapsed(nodeID string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.collapsed[nodeID]
}

// Responses

// SetResponse stores the latest response for a request and clears any error.
func (w *Workspace) SetResponse(requestID string, resp *core.Response) {
	w.mu.Lock()
	w.responses[requestID] = core.ResponseState{Response: resp, At: w.now()}
	w.mu.Unlock()
	w.emit(Event{Kind: EventResponseStored, NodeID: requestID})
}

// SetResponseError records a failed send next to the last good response.
func (w *Workspace) SetResponseError(requestID string, err error) {
	w.mu.Lock()
	state := w.responses[requestID]
	state.Err = err.Error()
	state.At = w.now()
	w.responses[requestID] = state
	w.mu.Unlock()
	w.emit(Event{Kind: EventResponseStored, NodeID: requestID})
}

// Response returns the last stored outcome for a request.
func (w *Workspace) Response(requestID string) (core.ResponseState, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	state, ok := w.responses[requestID]
	return state, ok
}

func hasPrefix(path, prefix tree.Path) bool {
	return len(prefix) > 0 && len(path) >= len(prefix) && prefix.Equal(path[:len(prefix)])
}

var _ Store = (*Workspace)(nil)
