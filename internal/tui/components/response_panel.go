package components

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tui"
	"github.com/artpar/postbox/internal/workspace"
)

// ResponseTab represents the active tab in the response panel.
type ResponseTab int

const (
	TabResponseBody ResponseTab = iota
	TabResponseHeaders
)

// ResponsePanel shows the stored response, or error, of the selected
// request.
type ResponsePanel struct {
	store     workspace.Store
	focused   bool
	width     int
	height    int
	activeTab ResponseTab
	scroll    int
	loading   map[string]bool
}

// NewResponsePanel creates a response panel over the store selection.
func NewResponsePanel(store workspace.Store) *ResponsePanel {
	return &ResponsePanel{
		store:   store,
		loading: make(map[string]bool),
	}
}

// Init initializes the component.
func (p *ResponsePanel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (p *ResponsePanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
	case tui.FocusMsg:
		p.focused = true
	case tui.BlurMsg:
		p.focused = false
	case tea.KeyMsg:
		if p.focused {
			return p.handleKeyMsg(msg)
		}
	}
	return p, nil
}

func (p *ResponsePanel) handleKeyMsg(msg tea.KeyMsg) (tui.Component, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		p.scrollBy(1)
	case "k", "up":
		p.scrollBy(-1)
	case "ctrl+d":
		p.scrollBy(p.contentHeight() / 2)
	case "ctrl+u":
		p.scrollBy(-p.contentHeight() / 2)
	case "g":
		p.scroll = 0
	case "G":
		p.scrollBy(len(p.contentLines(p.innerWidth())))
	case "h", "l", "left", "right":
		p.activeTab = 1 - p.activeTab
		p.scroll = 0
	case "y":
		if state, ok := p.state(); ok && state.Response != nil {
			return p, copyCmd("body", string(state.Response.Body))
		}
	}
	return p, nil
}

func (p *ResponsePanel) scrollBy(delta int) {
	lines := len(p.contentLines(p.innerWidth()))
	maxScroll := max(lines-p.contentHeight(), 0)
	p.scroll = min(max(p.scroll+delta, 0), maxScroll)
}

// SetLoading marks a request as in flight.
func (p *ResponsePanel) SetLoading(requestID string, loading bool) {
	if loading {
		p.loading[requestID] = true
	} else {
		delete(p.loading, requestID)
	}
	p.scroll = 0
}

// IsLoading reports whether the request is in flight.
func (p *ResponsePanel) IsLoading(requestID string) bool {
	return p.loading[requestID]
}

func (p *ResponsePanel) selectedID() string {
	return p.store.Selection().Path.Last()
}

func (p *ResponsePanel) state() (core.ResponseState, bool) {
	id := p.selectedID()
	if id == "" {
		return core.ResponseState{}, false
	}
	return p.store.Response(id)
}

// View renders the component.
func (p *ResponsePanel) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}
	inner := p.innerWidth()
	lines := []string{tui.RenderTitle(p.Title(), inner, p.focused), p.renderStatusLine()}

	body := p.contentLines(inner)
	end := min(p.scroll+p.contentHeight(), len(body))
	if p.scroll < end {
		lines = append(lines, body[p.scroll:end]...)
	}
	return tui.RenderBorder(strings.Join(lines, "\n"), p.width, p.height, p.focused)
}

func (p *ResponsePanel) renderStatusLine() string {
	muted := lipgloss.NewStyle().Foreground(tui.ColorMuted)
	if p.loading[p.selectedID()] {
		return lipgloss.NewStyle().Foreground(tui.ColorWarning).Render("Sending…")
	}
	state, ok := p.state()
	if !ok {
		return muted.Render("No response yet. enter sends")
	}
	if state.Failed() {
		return lipgloss.NewStyle().Foreground(tui.ColorError).Bold(true).Render("Error")
	}
	resp := state.Response
	statusStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("255"))
	switch {
	case resp.IsSuccess():
		statusStyle = statusStyle.Background(tui.ColorSuccess)
	case resp.IsError():
		statusStyle = statusStyle.Background(tui.ColorError)
	default:
		statusStyle = statusStyle.Background(tui.ColorWarning)
	}
	tab := "Body"
	if p.activeTab == TabResponseHeaders {
		tab = "Headers"
	}
	return statusStyle.Render(resp.Status) + muted.Render(fmt.Sprintf("  %s  %s  [%s]",
		FormatDuration(resp.Elapsed), FormatSize(resp.Size()), tab))
}

func (p *ResponsePanel) contentLines(width int) []string {
	state, ok := p.state()
	if !ok || p.loading[p.selectedID()] {
		return nil
	}
	if state.Failed() {
		lines := wrap(state.Err, width)
		if state.Response != nil {
			lines = append(lines, "", lipgloss.NewStyle().Foreground(tui.ColorMuted).Render(
				"previous response: "+state.Response.Status))
		}
		return lines
	}
	resp := state.Response
	if p.activeTab == TabResponseHeaders {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		var lines []string
		for _, k := range keys {
			for _, v := range resp.Headers[k] {
				lines = append(lines, tui.Truncate(k+": "+v, width))
			}
		}
		return lines
	}
	var lines []string
	for _, l := range strings.Split(resp.PrettyBody(), "\n") {
		lines = append(lines, tui.Truncate(l, width))
	}
	return lines
}

func wrap(s string, width int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		r := []rune(line)
		for len(r) > width && width > 0 {
			out = append(out, string(r[:width]))
			r = r[width:]
		}
		out = append(out, string(r))
	}
	return out
}

// FormatDuration renders an elapsed time the way the status line shows it.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// FormatSize renders a byte count.
func FormatSize(n int) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
}

func (p *ResponsePanel) innerWidth() int {
	return max(p.width-2, 1)
}

// contentHeight excludes border, title and status line.
func (p *ResponsePanel) contentHeight() int {
	return max(p.height-4, 1)
}

// Title returns the component title.
func (p *ResponsePanel) Title() string {
	return "Response"
}

func (p *ResponsePanel) Focused() bool {
	return p.focused
}

func (p *ResponsePanel) Focus() {
	p.focused = true
}

func (p *ResponsePanel) Blur() {
	p.focused = false
}

func (p *ResponsePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *ResponsePanel) Width() int {
	return p.width
}

func (p *ResponsePanel) Height() int {
	return p.height
}

// ActiveTab returns the active tab.
func (p *ResponsePanel) ActiveTab() ResponseTab {
	return p.activeTab
}

// Scroll returns the first visible content line.
func (p *ResponsePanel) Scroll() int {
	return p.scroll
}
