package workspace

import (
	"errors"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNotARequest        = errors.New("node is not a request")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrLastProject        = errors.New("cannot delete the last project")
)

// EventKind names what changed in the store.
type EventKind int

const (
	EventStateLoaded EventKind = iota
	EventProjectsChanged
	EventTreeChanged
	EventRequestEdited
	EventSelectionChanged
	EventResponseStored
	EventViewChanged
)

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Kind         EventKind
	CollectionID string
	NodeID       string
}

// Persistent reports whether the event changed persisted state.
func (e Event) Persistent() bool {
	switch e.Kind {
	case EventProjectsChanged, EventTreeChanged, EventRequestEdited:
		return true
	}
	return false
}

// Store is the set of operations the UI and CLI may perform on the
// workspace. State is never mutated from outside these methods.
type Store interface {
	Snapshot() *State
	Replace(state *State) error
	Subscribe(fn func(Event)) (unsubscribe func())

	Projects() []*Project
	ActiveProject() (*Project, bool)
	SetActiveProject(id string) error
	CreateProject(name string) (*Project, error)
	RenameProject(id, name string) error
	DeleteProject(id string) error

	Collection(id string) (*Collection, error)
	CreateCollection(projectID, name string) (*Collection, error)
	RenameCollection(id, name string) error
	DeleteCollection(id string) error

	Tree(collectionID string) ([]*tree.Node, error)
	Flattened(collectionID string) ([]tree.FlattenedItem, error)
	Filter(collectionID, query string) ([]*tree.Node, error)
	Find(collectionID string, path tree.Path) (*tree.Node, error)
	PathOf(collectionID, nodeID string) (tree.Path, error)
	Descendants(collectionID, nodeID string) int

	Create(collectionID string, context tree.Path, n *tree.Node) error
	CreateInside(collectionID string, folder tree.Path, n *tree.Node) error
	Rename(collectionID string, path tree.Path, name string) error
	Delete(collectionID string, path tree.Path) error
	EditRequest(collectionID string, path tree.Path, edits ...RequestEdit) error

	Indentation() int
	Projection(collectionID, activeID, overID string, offset float64) (tree.Projection, bool)
	MoveItem(collectionID, activeID, overID string, p tree.Projection) error

	Select(collectionID string, path tree.Path) error
	Selection() Selection

	SetCollapsed(nodeID string, collapsed bool)
	ToggleCollapsed(nodeID string) bool
	IsCollapsed(nodeID string) bool

	SetResponse(requestID string, resp *core.Response)
	SetResponseError(requestID string, err error)
	Response(requestID string) (core.ResponseState, bool)
}
