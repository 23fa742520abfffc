package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
)

// DefaultIndentation is the number of columns per tree depth level.
const DefaultIndentation = 2

// Workspace is the in-memory Store. Each collection's tree lives in its own
// tree.Arena; collapsed folders and responses live in side tables that are
// never persisted.
type Workspace struct {
	mu sync.RWMutex

	projects []*Project
	active   string
	arenas   map[string]*tree.Arena

	selection Selection
	collapsed map[string]bool
	responses map[string]core.ResponseState

	listeners   map[int]func(Event)
	nextListen  int
	indentation int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithIndentation sets the width of one depth level used by Projection.
func WithIndentation(columns int) Option {
	return func(w *Workspace) {
		if columns > 0 {
			w.indentation = columns
		}
	}
}

// WithLogger sets the logger used for rejected or stale operations.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a workspace holding state. A nil state starts from
// DefaultState.
func New(state *State, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		collapsed:   make(map[string]bool),
		responses:   make(map[string]core.ResponseState),
		listeners:   make(map[int]func(Event)),
		indentation: DefaultIndentation,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if state == nil {
		state = DefaultState()
	}
	if err := w.load(state); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workspace) load(state *State) error {
	arenas := make(map[string]*tree.Arena)
	var projects []*Project
	for _, p := range state.Projects {
		meta := &Project{ID: p.ID, Name: p.Name}
		for _, c := range p.Collections {
			if _, dup := arenas[c.ID]; dup {
				return fmt.Errorf("load collection %q: duplicate collection id %s", c.Name, c.ID)
			}
			a := tree.NewArena()
			if err := a.Load(c.Items); err != nil {
				return fmt.Errorf("load collection %q: %w", c.Name, err)
			}
			arenas[c.ID] = a
			meta.Collections = append(meta.Collections, &Collection{ID: c.ID, Name: c.Name})
		}
		projects = append(projects, meta)
	}
	if len(projects) == 0 {
		return w.load(DefaultState())
	}
	active := state.ActiveProject
	if !slices.ContainsFunc(projects, func(p *Project) bool { return p.ID == active }) {
		active = projects[0].ID
	}

	w.projects = projects
	w.active = active
	w.arenas = arenas
	w.selection = Selection{}
	clear(w.collapsed)
	clear(w.responses)
	return nil
}

// Snapshot returns a deep copy of the persisted state.
func (w *Workspace) Snapshot() *State {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := &State{ActiveProject: w.active}
	for _, p := range w.projects {
		cp := &Project{ID: p.ID, Name: p.Name}
		for _, c := range p.Collections {
			cp.Collections = append(cp.Collections, w.materialize(c))
		}
		out.Projects = append(out.Projects, cp)
	}
	return out
}

// materialize returns a collection with items that share no structure with
// the arena.
func (w *Workspace) materialize(c *Collection) *Collection {
	out := &Collection{ID: c.ID, Name: c.Name}
	for _, n := range w.arenas[c.ID].Nodes() {
		out.Items = append(out.Items, n.Clone())
	}
	return out
}

// Replace swaps the whole state, e.g. after loading from storage. Selection,
// collapsed folders and stored responses are reset.
func (w *Workspace) Replace(state *State) error {
	w.mu.Lock()
	err := w.load(state)
	w.mu.Unlock()
	if err != nil {
		return err
	}
	w.emit(Event{Kind: EventStateLoaded})
	return nil
}

// Subscribe registers fn for every applied mutation.
func (w *Workspace) Subscribe(fn func(Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextListen
	w.nextListen++
	w.listeners[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

func (w *Workspace) emit(ev Event) {
	w.mu.RLock()
	ids := make([]int, 0, len(w.listeners))
	for id := range w.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, w.listeners[id])
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// mutate runs fn under the write lock and announces ev when fn succeeds.
func (w *Workspace) mutate(ev Event, fn func() error) error {
	w.mu.Lock()
	err := fn()
	w.mu.Unlock()
	if err != nil {
		return err
	}
	w.emit(ev)
	return nil
}

// Projects

// Projects lists every project with its collection names but no trees.
func (w *Workspace) Projects() []*Project {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Project, 0, len(w.projects))
	for _, p := range w.projects {
		out = append(out, w.projectMeta(p))
	}
	return out
}

// projectMeta copies project and collection names without trees.
func (w *Workspace) projectMeta(p *Project) *Project {
	out := &Project{ID: p.ID, Name: p.Name}
	for _, c := range p.Collections {
		out.Collections = append(out.Collections, &Collection{ID: c.ID, Name: c.Name})
	}
	return out
}

// ActiveProject returns the project the UI and CLI work in.
func (w *Workspace) ActiveProject() (*Project, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, err := w.project(w.active)
	if err != nil {
		return nil, false
	}
	return w.projectMeta(p), true
}

// SetActiveProject switches the active project.
func (w *Workspace) SetActiveProject(id string) error {
	return w.mutate(Event{Kind: EventProjectsChanged}, func() error {
		if _, err := w.project(id); err != nil {
			return err
		}
		w.active = id
		return nil
	})
}

// CreateProject adds an empty project.
func (w *Workspace) CreateProject(name string) (*Project, error) {
	p := NewProject(name)
	err := w.mutate(Event{Kind: EventProjectsChanged}, func() error {
		w.projects = append(w.projects, &Project{ID: p.ID, Name: p.Name})
		return nil
	})
	return p, err
}

// RenameProject renames a project.
func (w *Workspace) RenameProject(id, name string) error {
	return w.mutate(Event{Kind: EventProjectsChanged}, func() error {
		p, err := w.project(id)
		if err != nil {
			return err
		}
		p.Name = name
		return nil
	})
}

// DeleteProject removes a project and its collections. The last project
// cannot be deleted.
func (w *Workspace) DeleteProject(id string) error {
	return w.mutate(Event{Kind: EventProjectsChanged}, func() error {
		i := slices.IndexFunc(w.projects, func(p *Project) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		if len(w.projects) == 1 {
			return ErrLastProject
		}
		for _, c := range w.projects[i].Collections {
			w.dropCollection(c.ID)
		}
		w.projects = slices.Delete(w.projects, i, i+1)
		if w.active == id {
			w.active = w.projects[0].ID
		}
		return nil
	})
}

func (w *Workspace) project(id string) (*Project, error) {
	for _, p := range w.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// Collections

// Collection returns a detached copy of a collection and its tree.
func (w *Workspace) Collection(id string) (*Collection, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, c, err := w.collection(id)
	if err != nil {
		return nil, err
	}
	return w.materialize(c), nil
}

// CreateCollection adds an empty collection to a project.
func (w *Workspace) CreateCollection(projectID, name string) (*Collection, error) {
	c := NewCollection(name)
	err := w.mutate(Event{Kind: EventProjectsChanged, CollectionID: c.ID}, func() error {
		p, err := w.project(projectID)
		if err != nil {
			return err
		}
		p.Collections = append(p.Collections, &Collection{ID: c.ID, Name: c.Name})
		w.arenas[c.ID] = tree.NewArena()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RenameCollection renames a collection.
func (w *Workspace) RenameCollection(id, name string) error {
	return w.mutate(Event{Kind: EventProjectsChanged, CollectionID: id}, func() error {
		_, c, err := w.collection(id)
		if err != nil {
			return err
		}
		c.Name = name
		return nil
	})
}

// DeleteCollection removes a collection along with its collapse and
// response state.
func (w *Workspace) DeleteCollection(id string) error {
	return w.mutate(Event{Kind: EventProjectsChanged, CollectionID: id}, func() error {
		p, _, err := w.collection(id)
		if err != nil {
			return err
		}
		p.Collections = slices.DeleteFunc(p.Collections, func(c *Collection) bool { return c.ID == id })
		w.dropCollection(id)
		return nil
	})
}

func (w *Workspace) dropCollection(id string) {
	if a, ok := w.arenas[id]; ok {
		for _, nodeID := range tree.IDs(a.Nodes()) {
			delete(w.collapsed, nodeID)
			delete(w.responses, nodeID)
		}
	}
	delete(w.arenas, id)
	if w.selection.CollectionID == id {
		w.selection = Selection{}
	}
}

func (w *Workspace) collection(id string) (*Project, *Collection, error) {
	for _, p := range w.projects {
		for _, c := range p.Collections {
			if c.ID == id {
				return p, c, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, id)
}

func (w *Workspace) arena(collectionID string) (*tree.Arena, error) {
	a, ok := w.arenas[collectionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionID)
	}
	return a, nil
}
