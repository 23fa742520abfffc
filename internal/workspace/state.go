package workspace

import (
	"github.com/artpar/postbox/internal/tree"
	"github.com/google/uuid"
)

// DefaultProjectName and DefaultCollectionName seed a fresh state.
const (
	DefaultProjectName    = "My Project"
	DefaultCollectionName = "My Collection"
)

// State is the persisted graph: projects, their collections and trees.
// Presentation state such as collapsed folders is not part of it.
type State struct {
	Projects      []*Project `json:"projects"`
	ActiveProject string     `json:"activeProject,omitempty"`
}

// Project groups collections.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Collections []*Collection `json:"collections"`
}

// Collection is a named tree of folders and requests.
type Collection struct {
	ID    string       `json:"id" yaml:"id"`
	Name  string       `json:"name" yaml:"name"`
	Items []*tree.Node `json:"items,omitempty" yaml:"items,omitempty"`
}

// NewProject creates an empty project with a fresh id.
func NewProject(name string) *Project {
	return &Project{ID: uuid.New().String(), Name: name}
}

// NewCollection creates an empty collection with a fresh id.
func NewCollection(name string) *Collection {
	return &Collection{ID: uuid.New().String(), Name: name}
}

// DefaultState returns the state used when nothing has been saved yet:
// one project holding one empty collection.
func DefaultState() *State {
	p := NewProject(DefaultProjectName)
	p.Collections = []*Collection{NewCollection(DefaultCollectionName)}
	return &State{
		Projects:      []*Project{p},
		ActiveProject: p.ID,
	}
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	out := &State{ActiveProject: s.ActiveProject}
	for _, p := range s.Projects {
		out.Projects = append(out.Projects, p.clone())
	}
	return out
}

func (p *Project) clone() *Project {
	out := &Project{ID: p.ID, Name: p.Name}
	for _, c := range p.Collections {
		out.Collections = append(out.Collections, c.Clone())
	}
	return out
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{ID: c.ID, Name: c.Name}
	for _, n := range c.Items {
		out.Items = append(out.Items, n.Clone())
	}
	return out
}

// Selection is the currently selected node.
type Selection struct {
	CollectionID string
	Path         tree.Path
}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool {
	return s.CollectionID == "" && len(s.Path) == 0
}
