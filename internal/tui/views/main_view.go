package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tui"
	"github.com/artpar/postbox/internal/tui/components"
	"github.com/artpar/postbox/internal/workspace"
)

// Pane represents which pane is focused.
type Pane int

const (
	PaneCollections Pane = iota
	PaneRequest
	PaneResponse
)

func (p Pane) String() string {
	switch p {
	case PaneRequest:
		return "Request"
	case PaneResponse:
		return "Response"
	default:
		return "Collections"
	}
}

// NotificationTTL is how long a status line notification stays visible.
const NotificationTTL = 3 * time.Second

// Sender sends a request definition over the network.
type Sender interface {
	Send(ctx context.Context, def *core.RequestDefinition) (*core.Response, error)
}

// MainView is the three-pane layout: collection tree on the left, request
// and response stacked on the right.
type MainView struct {
	store    workspace.Store
	sender   Sender
	logger   *slog.Logger
	copy     func(string) error
	docs     *components.MarkdownRenderer
	timeout  time.Duration
	width    int
	height   int
	panes    *tui.ComponentList
	tree     *components.CollectionTree
	request  *components.RequestPanel
	response *components.ResponsePanel
	showDocs bool

	notification string
	notifyErr    bool
	notifySeq    int
}

// Option configures a MainView.
type Option func(*MainView)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(v *MainView) {
		v.copy = fn
	}
}

// WithDocsStyle sets the glamour style used for request docs.
func WithDocsStyle(style string) Option {
	return func(v *MainView) {
		v.docs = components.NewMarkdownRenderer(style)
	}
}

// WithSendTimeout bounds each request sent from the UI.
func WithSendTimeout(d time.Duration) Option {
	return func(v *MainView) {
		v.timeout = d
	}
}

// WithLogger sets the logger for send outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(v *MainView) {
		v.logger = logger
	}
}

// clearNotificationMsg clears the notification it was scheduled for.
type clearNotificationMsg struct {
	seq int
}

// NewMainView creates the main view over a store.
func NewMainView(store workspace.Store, sender Sender, opts ...Option) *MainView {
	v := &MainView{
		store:    store,
		sender:   sender,
		logger:   slog.New(slog.DiscardHandler),
		copy:     clipboard.WriteAll,
		docs:     components.NewMarkdownRenderer(components.DefaultMarkdownStyle),
		timeout:  30 * time.Second,
		tree:     components.NewCollectionTree(store),
		request:  components.NewRequestPanel(store),
		response: components.NewResponsePanel(store),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.panes = tui.NewComponentList(v.tree, v.request, v.response)
	v.panes.SetFocusIndex(int(PaneCollections))
	return v
}

// Init initializes the view.
func (v *MainView) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.updatePaneSizes()
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case components.SendRequestMsg:
		v.response.SetLoading(msg.RequestID(), true)
		return v, v.send(msg)

	case components.ResponseMsg:
		v.response.SetLoading(msg.RequestID, false)
		if msg.Err != nil {
			v.store.SetResponseError(msg.RequestID, msg.Err)
			return v, v.notify("✗ "+msg.Err.Error(), true)
		}
		v.store.SetResponse(msg.RequestID, msg.Response)
		return v, nil

	case components.NotifyMsg:
		prefix := "✓ "
		if msg.Err {
			prefix = "✗ "
		}
		return v, v.notify(prefix+msg.Text, msg.Err)

	case components.CopyMsg:
		return v, v.handleCopy(msg)

	case clearNotificationMsg:
		if msg.seq == v.notifySeq {
			v.notification = ""
			v.notifyErr = false
		}
		return v, nil
	}

	return v.forwardToFocusedPane(msg)
}

func (v *MainView) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return v, tea.Quit
	}

	if v.showDocs {
		if msg.Type == tea.KeyEsc || msg.String() == "?" || msg.String() == "q" {
			v.showDocs = false
		}
		return v, nil
	}

	// Text inputs take every key; only esc leaves them, handled by the pane.
	if v.isEditing() {
		return v.forwardToFocusedPane(msg)
	}

	switch msg.String() {
	case "tab":
		v.panes.FocusNext()
		return v, nil
	case "shift+tab":
		v.panes.FocusPrev()
		return v, nil
	case "q":
		if v.tree.Mode() == components.TreeBrowse {
			return v, tea.Quit
		}
	case "?":
		v.showDocs = true
		return v, nil
	case "1":
		v.FocusPane(PaneCollections)
		return v, nil
	case "2":
		v.FocusPane(PaneRequest)
		return v, nil
	case "3":
		v.FocusPane(PaneResponse)
		return v, nil
	}

	return v.forwardToFocusedPane(msg)
}

func (v *MainView) forwardToFocusedPane(msg tea.Msg) (tui.Component, tea.Cmd) {
	focused := v.panes.Focused()
	if focused == nil {
		return v, nil
	}
	_, cmd := focused.Update(msg)
	return v, cmd
}

func (v *MainView) isEditing() bool {
	return v.tree.IsEditing() || v.request.IsEditing()
}

// send runs the request off the UI loop and reports back a ResponseMsg.
func (v *MainView) send(msg components.SendRequestMsg) tea.Cmd {
	id := msg.RequestID()
	def := msg.Request
	sender, timeout, logger := v.sender, v.timeout, v.logger
	return func() tea.Msg {
		if sender == nil {
			return components.ResponseMsg{RequestID: id, Err: errors.New("no HTTP client configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := sender.Send(ctx, def)
		if err != nil {
			logger.Warn("send failed", slog.String("request", id), slog.Any("error", err))
			return components.ResponseMsg{RequestID: id, Err: err}
		}
		return components.ResponseMsg{RequestID: id, Response: resp}
	}
}

func (v *MainView) handleCopy(msg components.CopyMsg) tea.Cmd {
	if err := v.copy(msg.Content); err != nil {
		return v.notify("✗ Copy failed: "+err.Error(), true)
	}
	return v.notify(fmt.Sprintf("✓ Copied %s (%s)", msg.Label, components.FormatSize(len(msg.Content))), false)
}

// notify shows text and schedules its removal.
func (v *MainView) notify(text string, isErr bool) tea.Cmd {
	v.notifySeq++
	v.notification = text
	v.notifyErr = isErr
	seq := v.notifySeq
	return tea.Tick(NotificationTTL, func(time.Time) tea.Msg {
		return clearNotificationMsg{seq: seq}
	})
}

// FocusPane focuses a pane directly.
func (v *MainView) FocusPane(pane Pane) {
	v.panes.SetFocusIndex(int(pane))
}

// FocusedPane returns the focused pane.
func (v *MainView) FocusedPane() Pane {
	return Pane(v.panes.FocusIndex())
}

func (v *MainView) updatePaneSizes() {
	if v.width == 0 || v.height == 0 {
		return
	}

	// Sidebar takes a third, clamped; the status bar takes the last line.
	sidebarWidth := min(max(v.width*30/100, 24), 60)
	rightWidth := max(v.width-sidebarWidth, 1)
	totalHeight := max(v.height-1, 2)

	requestHeight := max(totalHeight*45/100, 8)
	responseHeight := max(totalHeight-requestHeight, 3)

	v.tree.SetSize(sidebarWidth, totalHeight)
	v.request.SetSize(rightWidth, requestHeight)
	v.response.SetSize(rightWidth, responseHeight)
}

// View renders the view.
func (v *MainView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}
	if v.showDocs {
		return v.renderDocs()
	}

	right := lipgloss.JoinVertical(lipgloss.Left, v.request.View(), v.response.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, v.tree.View(), right)
	return lipgloss.JoinVertical(lipgloss.Left, panes, v.renderStatusBar())
}

func (v *MainView) renderStatusBar() string {
	var items []string

	mode := v.tree.Mode().String()
	modeStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch {
	case v.request.IsEditing():
		mode = "INSERT"
		fallthrough
	case v.isEditing():
		modeStyle = modeStyle.Background(tui.ColorWarning).Foreground(lipgloss.Color("0"))
	case v.tree.Mode() == components.TreeMove:
		modeStyle = modeStyle.Background(tui.ColorDropLine).Foreground(lipgloss.Color("0"))
	default:
		modeStyle = modeStyle.Background(tui.ColorSuccess).Foreground(lipgloss.Color("255"))
	}
	items = append(items, modeStyle.Render(mode))

	items = append(items, lipgloss.NewStyle().Foreground(tui.ColorText).Padding(0, 1).Render(v.FocusedPane().String()))

	if p, ok := v.store.ActiveProject(); ok {
		items = append(items, lipgloss.NewStyle().Foreground(tui.ColorMuted).Render(p.Name))
	}

	if v.notification != "" {
		style := lipgloss.NewStyle().Foreground(tui.ColorSuccess).Bold(true).Padding(0, 1)
		if v.notifyErr {
			style = style.Foreground(tui.ColorError)
		}
		items = append(items, style.Render(v.notification))
	}

	left := strings.Join(items, " ")
	hint := lipgloss.NewStyle().Foreground(tui.ColorMuted).Padding(0, 1).Render("? docs  q quit")
	spacer := strings.Repeat(" ", max(v.width-lipgloss.Width(left)-lipgloss.Width(hint), 0))

	return lipgloss.NewStyle().
		Width(v.width).
		MaxWidth(v.width).
		Background(lipgloss.Color("236")).
		Render(left + spacer + hint)
}

var keyHelp = []struct{ keys, desc string }{
	{"tab / 1 2 3", "switch pane"},
	{"j k g G", "move cursor"},
	{"space h l", "collapse / expand folder"},
	{"enter", "send request or toggle folder"},
	{"n N", "new request / folder after selection"},
	{"r d", "rename / delete"},
	{"/", "filter by name"},
	{"m", "move: j/k target, h/l depth, enter drop"},
	{"[ ]", "previous / next collection"},
	{"y", "copy as curl"},
	{"e M B", "edit URL / cycle method / cycle body type"},
	{"a space x", "add / toggle / remove row"},
	{"D", "edit request docs"},
}

func (v *MainView) renderDocs() string {
	width := max(v.width-4, 10)
	title := tui.RenderTitle("Docs", width, true)

	var sections []string
	sel := v.store.Selection()
	if n, err := v.store.Find(sel.CollectionID, sel.Path); err == nil && len(sel.Path) > 0 {
		sections = append(sections, lipgloss.NewStyle().Bold(true).Render(n.Name))
		if n.Request != nil && strings.TrimSpace(n.Request.Docs) != "" {
			sections = append(sections, v.docs.Render(n.Request.Docs, width))
		} else {
			sections = append(sections, lipgloss.NewStyle().Foreground(tui.ColorMuted).Render("No docs. D edits them in the request pane."))
		}
	}

	keys := []string{lipgloss.NewStyle().Bold(true).Render("Keys")}
	for _, k := range keyHelp {
		keys = append(keys, fmt.Sprintf("  %-14s %s", k.keys, k.desc))
	}
	sections = append(sections, strings.Join(keys, "\n"))

	content := title + "\n" + strings.Join(sections, "\n\n")
	return tui.RenderBorder(content, v.width, v.height, true)
}

// Title returns the view title.
func (v *MainView) Title() string {
	return "postbox"
}

func (v *MainView) Focused() bool {
	return true
}

func (v *MainView) Focus() {}

func (v *MainView) Blur() {}

func (v *MainView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updatePaneSizes()
}

func (v *MainView) Width() int {
	return v.width
}

func (v *MainView) Height() int {
	return v.height
}

// CollectionTree returns the tree pane.
func (v *MainView) CollectionTree() *components.CollectionTree {
	return v.tree
}

// RequestPanel returns the request pane.
func (v *MainView) RequestPanel() *components.RequestPanel {
	return v.request
}

// ResponsePanel returns the response pane.
func (v *MainView) ResponsePanel() *components.ResponsePanel {
	return v.response
}

// Notification returns the current status line notification.
func (v *MainView) Notification() string {
	return v.notification
}

// ShowingDocs reports whether the docs overlay is open.
func (v *MainView) ShowingDocs() bool {
	return v.showDocs
}

// Model adapts the view to tea.Model for tea.NewProgram.
type Model struct {
	Main *MainView
}

func (m Model) Init() tea.Cmd {
	return m.Main.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := m.Main.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.Main.View()
}
