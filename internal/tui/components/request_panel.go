package components

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/tui"
	"github.com/artpar/postbox/internal/workspace"
)

// RequestTab represents the active tab in the request panel.
type RequestTab int

const (
	TabQuery RequestTab = iota
	TabHeaders
	TabBody
	TabAuth
)

var tabNames = []string{"Params", "Headers", "Body", "Auth"}

var bodyTypes = []string{core.BodyNone, core.BodyJSON, core.BodyText, core.BodyForm}

// ErrInvalidInput is returned when an edit line cannot be parsed.
var ErrInvalidInput = errors.New("invalid input")

// editTarget names what the text input is editing.
type editTarget int

const (
	editNone editTarget = iota
	editURL
	editRow
	editBody
	editAuth
	editDocs
)

// RequestPanel shows and edits the selected request.
type RequestPanel struct {
	store     workspace.Store
	focused   bool
	width     int
	height    int
	activeTab RequestTab
	cursor    int
	editing   editTarget
	input     textinput.Model
}

// NewRequestPanel creates a request panel over the store selection.
func NewRequestPanel(store workspace.Store) *RequestPanel {
	input := textinput.New()
	input.Prompt = ""
	return &RequestPanel{
		store: store,
		input: input,
	}
}

// Init initializes the component.
func (p *RequestPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (p *RequestPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
	case tui.FocusMsg:
		p.focused = true
	case tui.BlurMsg:
		p.focused = false
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		if p.editing != editNone {
			return p.handleEditKey(msg)
		}
		return p.handleKeyMsg(msg)
	}
	return p, nil
}

func (p *RequestPanel) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	sel, node, ok := p.selected()
	if !ok {
		return p, nil
	}
	def := node.Request

	switch msg.String() {
	case "l", "right":
		p.activeTab = RequestTab((int(p.activeTab) + 1) % len(tabNames))
		p.cursor = 0
	case "h", "left":
		p.activeTab = RequestTab((int(p.activeTab) - 1 + len(tabNames)) % len(tabNames))
		p.cursor = 0
	case "j", "down":
		p.cursor = MoveCursor(p.cursor, 1, len(p.rows(def)))
	case "k", "up":
		p.cursor = MoveCursor(p.cursor, -1, len(p.rows(def)))
	case "enter":
		return p, func() tea.Msg {
			return SendRequestMsg{CollectionID: sel.CollectionID, Path: sel.Path, Request: def.Clone()}
		}
	case "M":
		return p, p.edit(sel, workspace.SetMethod(nextMethod(def.Method)))
	case "B":
		return p, p.edit(sel, workspace.SetBody(nextBodyType(def.Body.Type), def.Body.Content))
	case "e":
		return p, p.startEdit(editURL, def.URL)
	case "D":
		return p, p.startEdit(editDocs, def.Docs)
	case "a":
		switch p.activeTab {
		case TabQuery, TabHeaders:
			return p, p.startEdit(editRow, "")
		case TabBody:
			return p, p.startEdit(editBody, def.Body.Content)
		case TabAuth:
			return p, p.startEdit(editAuth, "")
		}
	case " ":
		return p, p.editRow(sel, def, workspace.ToggleQueryParam, workspace.ToggleHeader)
	case "x":
		cmd := p.editRow(sel, def, workspace.RemoveQueryParam, workspace.RemoveHeader)
		p.cursor = MoveCursor(p.cursor, 0, len(p.rows(def))-1)
		return p, cmd
	case "X":
		if p.activeTab == TabAuth {
			return p, p.edit(sel, workspace.ClearAuth())
		}
	case "y":
		return p, copyCmd("url", def.FullURL())
	}
	return p, nil
}

func (p *RequestPanel) editRow(sel workspace.Selection, def *core.RequestDefinition, query, header func(int) workspace.RequestEdit) tea.Cmd {
	switch p.activeTab {
	case TabQuery:
		if len(def.Query) > 0 {
			return p.edit(sel, query(p.cursor))
		}
	case TabHeaders:
		if len(def.Headers) > 0 {
			return p.edit(sel, header(p.cursor))
		}
	}
	return nil
}

func (p *RequestPanel) edit(sel workspace.Selection, edits ...workspace.RequestEdit) tea.Cmd {
	if err := p.store.EditRequest(sel.CollectionID, sel.Path, edits...); err != nil {
		return notifyErr("edit", err)
	}
	return nil
}

func (p *RequestPanel) startEdit(target editTarget, value string) tea.Cmd {
	p.editing = target
	p.input.Placeholder = editPlaceholder(target, p.activeTab)
	p.input.SetValue(value)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *RequestPanel) handleEditKey(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.stopEdit()
		return p, nil
	case tea.KeyEnter:
		target, value := p.editing, p.input.Value()
		p.stopEdit()
		sel, node, ok := p.selected()
		if !ok {
			return p, nil
		}
		edit, err := p.parseEdit(target, value, node.Request)
		if err != nil {
			return p, notifyErr("edit", err)
		}
		return p, p.edit(sel, edit)
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *RequestPanel) stopEdit() {
	p.editing = editNone
	p.input.Blur()
	p.input.SetValue("")
}

func (p *RequestPanel) parseEdit(target editTarget, value string, def *core.RequestDefinition) (workspace.RequestEdit, error) {
	switch target {
	case editURL:
		return workspace.SetURL(strings.TrimSpace(value)), nil
	case editDocs:
		return workspace.SetDocs(strings.ReplaceAll(value, `\n`, "\n")), nil
	case editBody:
		bodyType := def.Body.Type
		if bodyType == core.BodyNone && value != "" {
			bodyType = core.BodyText
		}
		return workspace.SetBody(bodyType, value), nil
	case editAuth:
		return ParseAuth(value)
	case editRow:
		if p.activeTab == TabHeaders {
			key, val, ok := ParsePair(value, ":")
			if !ok {
				return nil, fmt.Errorf("%w: want Name: value", ErrInvalidInput)
			}
			return workspace.AddHeader(key, val), nil
		}
		key, val, ok := ParsePair(value, "=")
		if !ok {
			return nil, fmt.Errorf("%w: want key=value", ErrInvalidInput)
		}
		return workspace.AddQueryParam(key, val), nil
	}
	return nil, ErrInvalidInput
}

// ParsePair splits "key<sep>value", trimming both sides. The key must not
// be empty.
func ParsePair(s, sep string) (key, value string, ok bool) {
	key, value, found := strings.Cut(s, sep)
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// ParseAuth turns an auth line into an edit. Accepted forms:
//
//	none
//	basic user:password
//	bearer TOKEN
//	apikey Name=value [query]
func ParseAuth(s string) (workspace.RequestEdit, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty auth", ErrInvalidInput)
	}
	switch strings.ToLower(fields[0]) {
	case "none":
		return workspace.ClearAuth(), nil
	case "basic":
		if len(fields) == 2 {
			if user, pass, ok := strings.Cut(fields[1], ":"); ok && user != "" {
				return workspace.SetBasicAuth(user, pass), nil
			}
		}
	case "bearer":
		if len(fields) == 2 {
			return workspace.SetBearerAuth(fields[1]), nil
		}
	case "apikey":
		if len(fields) == 2 || len(fields) == 3 {
			key, value, ok := ParsePair(fields[1], "=")
			if !ok {
				break
			}
			in := core.APIKeyInHeader
			if len(fields) == 3 {
				switch core.APIKeyLocation(strings.ToLower(fields[2])) {
				case core.APIKeyInQuery:
					in = core.APIKeyInQuery
				case core.APIKeyInHeader:
				default:
					return nil, fmt.Errorf("%w: api key location %q", ErrInvalidInput, fields[2])
				}
			}
			return workspace.SetAPIKeyAuth(key, value, in), nil
		}
	}
	return nil, fmt.Errorf("%w: auth %q", ErrInvalidInput, s)
}

func nextMethod(method string) string {
	i := slices.Index(core.Methods, method)
	return core.Methods[(i+1)%len(core.Methods)]
}

func nextBodyType(t string) string {
	i := slices.Index(bodyTypes, t)
	return bodyTypes[(i+1)%len(bodyTypes)]
}

func editPlaceholder(target editTarget, tab RequestTab) string {
	switch target {
	case editURL:
		return "https://example.com/path"
	case editRow:
		if tab == TabHeaders {
			return "Name: value"
		}
		return "key=value"
	case editAuth:
		return "bearer TOKEN | basic user:pass | apikey Name=value [query] | none"
	case editDocs:
		return `markdown, \n for newlines`
	}
	return ""
}

// selected returns the selected request node, if any.
func (p *RequestPanel) selected() (workspace.Selection, *tree.Node, bool) {
	sel := p.store.Selection()
	if sel.CollectionID == "" || len(sel.Path) == 0 {
		return sel, nil, false
	}
	n, err := p.store.Find(sel.CollectionID, sel.Path)
	if err != nil || n.Request == nil {
		return sel, nil, false
	}
	return sel, n, true
}

// rows returns the editable rows of the active tab.
func (p *RequestPanel) rows(def *core.RequestDefinition) []core.KeyValue {
	switch p.activeTab {
	case TabQuery:
		return def.Query
	case TabHeaders:
		return def.Headers
	}
	return nil
}

// View renders the component.
func (p *RequestPanel) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}
	inner := max(p.width-2, 1)
	height := max(p.height-2, 1)

	lines := []string{tui.RenderTitle(p.Title(), inner, p.focused)}

	_, node, ok := p.selected()
	if !ok {
		lines = append(lines, lipgloss.NewStyle().Foreground(tui.ColorBorder).Render("No request selected"))
		return tui.RenderBorder(strings.Join(lines, "\n"), p.width, p.height, p.focused)
	}
	def := node.Request

	if p.editing == editURL {
		lines = append(lines, tui.MethodBadge(def.Method)+" "+p.input.View())
	} else {
		url := def.FullURL()
		if url == "" {
			url = lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("(no URL, press e)")
		}
		lines = append(lines, tui.MethodBadge(def.Method)+" "+tui.Truncate(url, inner-6))
	}
	lines = append(lines, p.renderTabBar())

	content := p.renderTabContent(def, inner)
	if p.editing != editNone && p.editing != editURL {
		content = append(content, "> "+p.input.View())
	}
	lines = append(lines, content...)

	if len(lines) > height {
		lines = lines[:height]
	}
	return tui.RenderBorder(strings.Join(lines, "\n"), p.width, p.height, p.focused)
}

func (p *RequestPanel) renderTabBar() string {
	var tabs []string
	for i, name := range tabNames {
		style := lipgloss.NewStyle().Padding(0, 1)
		if RequestTab(i) == p.activeTab {
			if p.focused {
				style = style.Background(tui.ColorAccent).Foreground(tui.ColorTitle).Bold(true)
			} else {
				style = style.Background(tui.ColorBorder).Bold(true)
			}
		}
		tabs = append(tabs, style.Render(name))
	}
	return strings.Join(tabs, " ")
}

func (p *RequestPanel) renderTabContent(def *core.RequestDefinition, width int) []string {
	muted := lipgloss.NewStyle().Foreground(tui.ColorMuted)

	switch p.activeTab {
	case TabBody:
		if def.Body.Type == core.BodyNone {
			return []string{muted.Render("No body. B cycles type, a edits")}
		}
		lines := []string{muted.Render("type: " + def.Body.Type)}
		for _, l := range strings.Split(def.Body.Content, "\n") {
			lines = append(lines, tui.Truncate(l, width))
		}
		return lines
	case TabAuth:
		return []string{def.Auth.Summary(), muted.Render("a sets auth, X clears")}
	}

	rows := p.rows(def)
	if len(rows) == 0 {
		return []string{muted.Render("Nothing defined. a adds a row")}
	}
	sep := "="
	if p.activeTab == TabHeaders {
		sep = ": "
	}
	var lines []string
	for i, kv := range rows {
		prefix := "  "
		if i == p.cursor && p.focused {
			prefix = "> "
		}
		check := "[x] "
		if !kv.Enabled {
			check = "[ ] "
		}
		line := tui.Truncate(prefix+check+kv.Key+sep+kv.Value, width)
		if !kv.Enabled {
			line = muted.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

// Title returns the component title.
func (p *RequestPanel) Title() string {
	return "Request"
}

func (p *RequestPanel) Focused() bool {
	return p.focused
}

func (p *RequestPanel) Focus() {
	p.focused = true
}

func (p *RequestPanel) Blur() {
	p.focused = false
}

func (p *RequestPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *RequestPanel) Width() int {
	return p.width
}

func (p *RequestPanel) Height() int {
	return p.height
}

// IsEditing reports whether keystrokes are captured by a text input.
func (p *RequestPanel) IsEditing() bool {
	return p.editing != editNone
}

// ActiveTab returns the active tab.
func (p *RequestPanel) ActiveTab() RequestTab {
	return p.activeTab
}

// SetActiveTab switches tabs and resets the row cursor.
func (p *RequestPanel) SetActiveTab(tab RequestTab) {
	p.activeTab = tab
	p.cursor = 0
}

// Cursor returns the row cursor.
func (p *RequestPanel) Cursor() int {
	return p.cursor
}
