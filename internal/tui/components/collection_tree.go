package components

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/exporter"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/tui"
	"github.com/artpar/postbox/internal/workspace"
)

// TreeMode is the interaction mode of the collection tree.
type TreeMode int

const (
	TreeBrowse TreeMode = iota
	TreeFilter
	TreeRename
	TreeConfirmDelete
	TreeMove
)

func (m TreeMode) String() string {
	switch m {
	case TreeFilter:
		return "FILTER"
	case TreeRename:
		return "RENAME"
	case TreeConfirmDelete:
		return "DELETE?"
	case TreeMove:
		return "MOVE"
	default:
		return "NORMAL"
	}
}

// Default names for items created from the tree.
const (
	NewRequestName = "New Request"
	NewFolderName  = "New Folder"
)

// moveState is an uncommitted keyboard move.
type moveState struct {
	activeID   string
	overID     string
	offset     float64
	projection tree.Projection
	valid      bool
}

// CollectionTree displays one collection of the active project as an
// indented, collapsible list and drives every structural edit.
type CollectionTree struct {
	store        workspace.Store
	collectionID string
	focused      bool
	width        int
	height       int
	cursor       int
	offset       int
	items        []tree.FlattenedItem
	mode         TreeMode
	input        textinput.Model
	filter       string
	gPressed     bool
	move         moveState
	renameTarget tree.Path
	deleteTarget tree.Path
}

// NewCollectionTree creates a tree over the first collection of the active
// project.
func NewCollectionTree(store workspace.Store) *CollectionTree {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 200

	c := &CollectionTree{
		store: store,
		input: input,
	}
	if p, ok := store.ActiveProject(); ok && len(p.Collections) > 0 {
		c.collectionID = p.Collections[0].ID
	}
	if sel := store.Selection(); sel.CollectionID != "" {
		if _, err := store.Collection(sel.CollectionID); err == nil {
			c.collectionID = sel.CollectionID
		}
	}
	c.Refresh()
	if len(store.Selection().Path) == 0 && len(c.items) > 0 {
		c.setCursor(0)
	}
	return c
}

// Init initializes the component.
func (c *CollectionTree) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (c *CollectionTree) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.SetSize(msg.Width, msg.Height)
	case tui.FocusMsg:
		c.focused = true
	case tui.BlurMsg:
		c.focused = false
	case tea.KeyMsg:
		if !c.focused {
			return c, nil
		}
		return c.handleKeyMsg(msg)
	}
	return c, nil
}

func (c *CollectionTree) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch c.mode {
	case TreeFilter:
		return c.handleFilterKey(msg)
	case TreeRename:
		return c.handleRenameKey(msg)
	case TreeConfirmDelete:
		return c.handleConfirmKey(msg)
	case TreeMove:
		return c.handleMoveKey(msg)
	}

	key := msg.String()
	if key != "g" {
		c.gPressed = false
	}

	switch key {
	case "j", "down":
		c.moveCursor(1)
	case "k", "up":
		c.moveCursor(-1)
	case "g":
		if c.gPressed {
			c.gPressed = false
			c.setCursor(0)
		} else {
			c.gPressed = true
		}
	case "G":
		c.setCursor(len(c.items) - 1)
	case " ":
		c.toggleCurrent()
	case "l", "right":
		c.expandCurrent()
	case "h", "left":
		c.collapseCurrent()
	case "enter":
		return c, c.activateCurrent()
	case "n":
		return c, c.create(tree.NewRequest(NewRequestName, core.NewRequestDefinition(http.MethodGet, "")))
	case "N":
		return c, c.create(tree.NewFolder(NewFolderName))
	case "r":
		return c, c.startRename()
	case "d":
		if item, ok := c.current(); ok {
			c.deleteTarget = item.Path
			c.mode = TreeConfirmDelete
		}
	case "/":
		return c, c.startFilter()
	case "esc":
		if c.filter != "" {
			c.filter = ""
			c.Refresh()
		}
	case "m":
		return c, c.startMove()
	case "y":
		return c, c.copyCurl()
	case "[":
		c.cycleCollection(-1)
	case "]":
		c.cycleCollection(1)
	}
	return c, nil
}

// Browsing

func (c *CollectionTree) moveCursor(delta int) {
	c.setCursor(MoveCursor(c.cursor, delta, len(c.items)))
}

func (c *CollectionTree) setCursor(pos int) {
	if len(c.items) == 0 {
		c.cursor, c.offset = 0, 0
		return
	}
	c.cursor = MoveCursor(pos, 0, len(c.items))
	c.offset = AdjustOffset(c.cursor, c.offset, c.contentHeight())
	_ = c.store.Select(c.collectionID, c.items[c.cursor].Path)
}

func (c *CollectionTree) current() (tree.FlattenedItem, bool) {
	if c.cursor < 0 || c.cursor >= len(c.items) {
		return tree.FlattenedItem{}, false
	}
	return c.items[c.cursor], true
}

func (c *CollectionTree) toggleCurrent() {
	item, ok := c.current()
	if !ok || !item.Node.IsFolder() || c.filter != "" {
		return
	}
	c.store.ToggleCollapsed(item.ID())
	c.Refresh()
}

func (c *CollectionTree) expandCurrent() {
	item, ok := c.current()
	if !ok || !item.Node.IsFolder() || c.filter != "" {
		return
	}
	c.store.SetCollapsed(item.ID(), false)
	c.Refresh()
}

// collapseCurrent folds an open folder, otherwise jumps to the parent row.
func (c *CollectionTree) collapseCurrent() {
	item, ok := c.current()
	if !ok {
		return
	}
	if item.Node.IsFolder() && !c.store.IsCollapsed(item.ID()) && len(item.Node.Children) > 0 && c.filter == "" {
		c.store.SetCollapsed(item.ID(), true)
		c.Refresh()
		return
	}
	if item.ParentID != "" {
		c.setCursor(IndexOfID(c.items, item.ParentID, c.cursor))
	}
}

func (c *CollectionTree) activateCurrent() tea.Cmd {
	item, ok := c.current()
	if !ok {
		return nil
	}
	if item.Node.IsFolder() {
		c.toggleCurrent()
		return nil
	}
	return func() tea.Msg {
		return SendRequestMsg{
			CollectionID: c.collectionID,
			Path:         item.Path,
			Request:      item.Node.Request.Clone(),
		}
	}
}

func (c *CollectionTree) copyCurl() tea.Cmd {
	item, ok := c.current()
	if !ok || item.Node.Request == nil {
		return nil
	}
	return copyCmd("curl", exporter.Curl(item.Node.Request))
}

func (c *CollectionTree) cycleCollection(delta int) {
	p, ok := c.store.ActiveProject()
	if !ok || len(p.Collections) == 0 {
		return
	}
	idx := 0
	for i, coll := range p.Collections {
		if coll.ID == c.collectionID {
			idx = i
		}
	}
	idx = (idx + delta + len(p.Collections)) % len(p.Collections)
	c.SetCollection(p.Collections[idx].ID)
}

// Structural edits

func (c *CollectionTree) create(n *tree.Node) tea.Cmd {
	if c.collectionID == "" {
		return warn("no collection to add to")
	}
	var context tree.Path
	if item, ok := c.current(); ok {
		context = item.Path
	}
	if err := c.store.Create(c.collectionID, context, n); err != nil {
		return notifyErr("create", err)
	}
	c.filter = ""
	c.Refresh()
	c.setCursor(IndexOfID(c.items, n.ID, c.cursor))
	return c.startRename()
}

func (c *CollectionTree) startRename() tea.Cmd {
	item, ok := c.current()
	if !ok {
		return nil
	}
	c.renameTarget = item.Path
	c.mode = TreeRename
	c.input.SetValue(item.Node.Name)
	c.input.CursorEnd()
	return c.input.Focus()
}

func (c *CollectionTree) handleRenameKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		c.endInput()
		return c, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(c.input.Value())
		target := c.renameTarget
		c.endInput()
		if name == "" {
			return c, warn("name cannot be empty")
		}
		if err := c.store.Rename(c.collectionID, target, name); err != nil {
			return c, notifyErr("rename", err)
		}
		c.Refresh()
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *CollectionTree) handleConfirmKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	target := c.deleteTarget
	c.deleteTarget = nil
	c.mode = TreeBrowse
	if msg.String() != "y" {
		return c, nil
	}
	if err := c.store.Delete(c.collectionID, target); err != nil {
		return c, notifyErr("delete", err)
	}
	c.Refresh()
	c.setCursor(c.cursor)
	return c, nil
}

// Filtering

func (c *CollectionTree) startFilter() tea.Cmd {
	c.mode = TreeFilter
	c.input.SetValue(c.filter)
	c.input.CursorEnd()
	return c.input.Focus()
}

func (c *CollectionTree) handleFilterKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		c.endInput()
		c.filter = ""
		c.Refresh()
		return c, nil
	case tea.KeyEnter:
		c.endInput()
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if c.input.Value() != c.filter {
		c.filter = c.input.Value()
		c.Refresh()
		c.setCursor(0)
	}
	return c, cmd
}

func (c *CollectionTree) endInput() {
	c.mode = TreeBrowse
	c.input.Blur()
	c.input.SetValue("")
	c.renameTarget = nil
}

// Moving

// movingItems is the interactive list with the active item's subtree
// hidden, as while it is being carried.
func (c *CollectionTree) movingItems() []tree.FlattenedItem {
	return tree.RemoveCollapsedSubtrees(c.items, c.move.activeID)
}

func (c *CollectionTree) startMove() tea.Cmd {
	if c.filter != "" {
		return warn("clear the filter before moving")
	}
	item, ok := c.current()
	if !ok {
		return nil
	}
	c.mode = TreeMove
	c.move = moveState{activeID: item.ID(), overID: item.ID()}
	c.reproject()
	return nil
}

func (c *CollectionTree) reproject() {
	c.move.projection, c.move.valid = c.store.Projection(c.collectionID, c.move.activeID, c.move.overID, c.move.offset)
}

func (c *CollectionTree) handleMoveKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		c.hover(tree.Down)
	case "k", "up":
		c.hover(tree.Up)
	case "h", "left":
		c.shift(tree.Left)
	case "l", "right":
		c.shift(tree.Right)
	case "enter":
		return c, c.commitMove()
	case "esc":
		c.cancelMove()
	}
	return c, nil
}

func (c *CollectionTree) hover(dir tree.Direction) {
	if over, ok := HoverTarget(c.movingItems(), c.move.overID, dir, c.innerWidth()); ok {
		c.move.overID = over
		c.reproject()
	}
}

func (c *CollectionTree) shift(dir tree.Direction) {
	if !c.move.valid {
		return
	}
	if offset, ok := tree.KeyboardOffset(dir, c.move.projection, c.move.offset, c.store.Indentation()); ok {
		c.move.offset = offset
		c.reproject()
	}
}

func (c *CollectionTree) commitMove() tea.Cmd {
	m := c.move
	c.cancelMove()
	if !m.valid {
		return warn("nothing to move")
	}
	if err := c.store.MoveItem(c.collectionID, m.activeID, m.overID, m.projection); err != nil {
		if errors.Is(err, tree.ErrInvalidParent) {
			return warn("only folders can contain items")
		}
		return notifyErr("move", err)
	}
	c.Refresh()
	c.setCursor(IndexOfID(c.items, m.activeID, c.cursor))
	return nil
}

func (c *CollectionTree) cancelMove() {
	c.mode = TreeBrowse
	c.move = moveState{}
}

// Data

// Refresh reloads the visible list from the store, keeping the cursor on
// the selected node when it is still visible.
func (c *CollectionTree) Refresh() {
	c.items = nil
	if c.collectionID == "" {
		c.cursor, c.offset = 0, 0
		return
	}
	if c.filter != "" {
		if nodes, err := c.store.Filter(c.collectionID, c.filter); err == nil {
			c.items = tree.Flatten(nodes)
		}
	} else if items, err := c.store.Flattened(c.collectionID); err == nil {
		c.items = items
	}

	if sel := c.store.Selection(); sel.CollectionID == c.collectionID {
		c.cursor = IndexOfID(c.items, sel.Path.Last(), c.cursor)
	}
	c.cursor = MoveCursor(c.cursor, 0, len(c.items))
	c.offset = AdjustOffset(c.cursor, c.offset, c.contentHeight())
}

// SetCollection switches the tree to another collection.
func (c *CollectionTree) SetCollection(id string) {
	if id == c.collectionID {
		return
	}
	c.collectionID = id
	c.filter = ""
	c.cursor, c.offset = 0, 0
	c.cancelMove()
	c.Refresh()
	if len(c.items) > 0 {
		c.setCursor(c.cursor)
	}
}

// View

func (c *CollectionTree) View() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}
	inner := c.innerWidth()

	parts := []string{
		tui.RenderTitle(c.Title(), inner, c.focused),
		c.renderInputBar(inner),
	}

	items, cursor := c.items, c.cursor
	if c.mode == TreeMove {
		items, cursor = c.previewItems()
	}

	height := c.contentHeight()
	offset := AdjustOffset(cursor, c.offset, height)
	var lines []string
	for i := offset; i < len(items) && len(lines) < height; i++ {
		lines = append(lines, c.renderItem(items[i], i == cursor, inner))
	}
	if len(items) == 0 {
		empty := "No items. n: new request  N: new folder"
		if c.filter != "" {
			empty = "No matches for " + c.filter
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(tui.ColorMuted).Render(tui.Truncate(empty, inner)))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	parts = append(parts, lines...)

	return tui.RenderBorder(strings.Join(parts, "\n"), c.width, c.height, c.focused)
}

// previewItems returns the list as it would look after dropping: the
// active row sits at the hovered position with the projected depth.
func (c *CollectionTree) previewItems() ([]tree.FlattenedItem, int) {
	items := c.movingItems()
	from := tree.IndexOf(items, c.move.activeID)
	to := tree.IndexOf(items, c.move.overID)
	if from < 0 || to < 0 {
		return items, c.cursor
	}
	preview := tree.ArrayMove(items, from, to)
	if c.move.valid {
		preview[to].Depth = c.move.projection.Depth
	}
	return preview, to
}

func (c *CollectionTree) renderInputBar(width int) string {
	muted := lipgloss.NewStyle().Foreground(tui.ColorMuted)
	switch c.mode {
	case TreeFilter:
		return tui.Truncate("/"+c.input.View(), width)
	case TreeRename:
		return tui.Truncate("name: "+c.input.View(), width)
	case TreeConfirmDelete:
		name := ""
		if item, ok := c.current(); ok {
			name = item.Node.Name
		}
		return lipgloss.NewStyle().Foreground(tui.ColorError).Render(
			tui.Truncate(fmt.Sprintf("delete %q? y/n", name), width))
	case TreeMove:
		hint := "move: j/k target  h/l depth  enter drop  esc cancel"
		if c.move.valid && c.move.projection.ParentID != "" {
			if parent, err := c.store.Find(c.collectionID, c.pathOf(c.move.projection.ParentID)); err == nil {
				hint = "into " + parent.Name + "  " + hint
			}
		}
		return lipgloss.NewStyle().Foreground(tui.ColorDropLine).Render(tui.Truncate(hint, width))
	}
	if c.filter != "" {
		return muted.Render(tui.Truncate("filter: "+c.filter+"  (esc clears)", width))
	}
	return muted.Render(tui.Truncate(c.collectionName(), width))
}

func (c *CollectionTree) renderItem(item tree.FlattenedItem, selected bool, width int) string {
	moving := c.mode == TreeMove && item.ID() == c.move.activeID

	prefix := " "
	if moving {
		prefix = "⇢"
	} else if selected {
		prefix = "→"
	}
	indent := strings.Repeat(" ", item.Depth*c.store.Indentation())

	var icon string
	switch {
	case item.Node.IsFolder() && (c.store.IsCollapsed(item.ID()) || moving):
		icon = "▶ "
	case item.Node.IsFolder():
		icon = "▼ "
	case item.Node.Request != nil:
		icon = tui.MethodBadge(item.Node.Request.Method) + " "
	default:
		icon = "  "
	}

	badge := ""
	if item.Node.IsFolder() && (moving || c.store.IsCollapsed(item.ID())) {
		if n := c.store.Descendants(c.collectionID, item.ID()); n > 0 {
			badge = lipgloss.NewStyle().Foreground(tui.ColorMuted).Render(fmt.Sprintf(" %d", n))
		}
	}

	head := prefix + indent + icon
	name := tui.Truncate(item.Node.Name, width-lipgloss.Width(head)-lipgloss.Width(badge))
	line := tui.PadRight(head+name+badge, width)

	style := lipgloss.NewStyle()
	switch {
	case moving:
		style = style.Foreground(tui.ColorDropLine).Bold(true)
	case selected && c.focused:
		style = style.Background(tui.ColorAccent).Foreground(tui.ColorTitle)
	case selected:
		style = style.Background(tui.ColorDim).Foreground(tui.ColorText)
	}
	return style.Render(line)
}

func (c *CollectionTree) pathOf(id string) tree.Path {
	path, err := c.store.PathOf(c.collectionID, id)
	if err != nil {
		return nil
	}
	return path
}

func (c *CollectionTree) collectionName() string {
	if coll, err := c.store.Collection(c.collectionID); err == nil {
		return coll.Name
	}
	return ""
}

func (c *CollectionTree) innerWidth() int {
	return max(c.width-2, 1)
}

// contentHeight is the number of rows available for items: border, title
// and input bar take four lines.
func (c *CollectionTree) contentHeight() int {
	return max(c.height-4, 1)
}

// Accessors

func (c *CollectionTree) Title() string {
	return "Collections"
}

func (c *CollectionTree) Focused() bool {
	return c.focused
}

func (c *CollectionTree) Focus() {
	c.focused = true
}

func (c *CollectionTree) Blur() {
	c.focused = false
}

func (c *CollectionTree) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.offset = AdjustOffset(c.cursor, c.offset, c.contentHeight())
}

func (c *CollectionTree) Width() int {
	return c.width
}

func (c *CollectionTree) Height() int {
	return c.height
}

// IsEditing reports whether keystrokes are captured by a text input.
func (c *CollectionTree) IsEditing() bool {
	return c.mode == TreeFilter || c.mode == TreeRename
}

// Mode returns the current interaction mode.
func (c *CollectionTree) Mode() TreeMode {
	return c.mode
}

// CollectionID returns the displayed collection.
func (c *CollectionTree) CollectionID() string {
	return c.collectionID
}

// Items returns the visible rows.
func (c *CollectionTree) Items() []tree.FlattenedItem {
	return c.items
}

// Cursor returns the cursor row.
func (c *CollectionTree) Cursor() int {
	return c.cursor
}

// Selected returns the row under the cursor.
func (c *CollectionTree) Selected() (tree.FlattenedItem, bool) {
	return c.current()
}

// FilterQuery returns the active filter.
func (c *CollectionTree) FilterQuery() string {
	return c.filter
}

// MoveProjection returns the pending move target while in move mode.
func (c *CollectionTree) MoveProjection() (overID string, offset float64, p tree.Projection, ok bool) {
	return c.move.overID, c.move.offset, c.move.projection, c.mode == TreeMove && c.move.valid
}
