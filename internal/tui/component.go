package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Component is a focusable pane of the terminal UI.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Component, tea.Cmd)
	View() string

	Title() string
	Focused() bool
	Focus()
	Blur()

	SetSize(width, height int)
	Width() int
	Height() int
}

// FocusMsg is sent when a component should gain focus.
type FocusMsg struct{}

// BlurMsg is sent when a component should lose focus.
type BlurMsg struct{}

// ComponentList manages a list of components with focus cycling.
type ComponentList struct {
	components []Component
	focusIndex int
}

// NewComponentList creates an empty list with nothing focused.
func NewComponentList(components ...Component) *ComponentList {
	return &ComponentList{
		components: components,
		focusIndex: -1,
	}
}

// Add appends a component.
func (cl *ComponentList) Add(c Component) {
	cl.components = append(cl.components, c)
}

// Len returns the number of components.
func (cl *ComponentList) Len() int {
	return len(cl.components)
}

// Get returns a component by index, or nil.
func (cl *ComponentList) Get(index int) Component {
	if index < 0 || index >= len(cl.components) {
		return nil
	}
	return cl.components[index]
}

// FocusNext cycles focus forward.
func (cl *ComponentList) FocusNext() {
	if len(cl.components) == 0 {
		return
	}
	cl.setFocus((cl.focusIndex + 1) % len(cl.components))
}

// FocusPrev cycles focus backward.
func (cl *ComponentList) FocusPrev() {
	if len(cl.components) == 0 {
		return
	}
	prev := cl.focusIndex - 1
	if prev < 0 {
		prev = len(cl.components) - 1
	}
	cl.setFocus(prev)
}

// FocusIndex returns the index of the focused component, or -1.
func (cl *ComponentList) FocusIndex() int {
	return cl.focusIndex
}

// SetFocusIndex focuses the component at index.
func (cl *ComponentList) SetFocusIndex(index int) {
	if index < 0 || index >= len(cl.components) {
		return
	}
	cl.setFocus(index)
}

// Focused returns the focused component, or nil.
func (cl *ComponentList) Focused() Component {
	return cl.Get(cl.focusIndex)
}

func (cl *ComponentList) setFocus(index int) {
	if c := cl.Get(cl.focusIndex); c != nil {
		c.Blur()
	}
	cl.focusIndex = index
	cl.components[index].Focus()
}

// Shared colors.
const (
	ColorAccent   = lipgloss.Color("62")
	ColorTitle    = lipgloss.Color("229")
	ColorMuted    = lipgloss.Color("243")
	ColorBorder   = lipgloss.Color("240")
	ColorDim      = lipgloss.Color("238")
	ColorText     = lipgloss.Color("252")
	ColorSuccess  = lipgloss.Color("34")
	ColorWarning  = lipgloss.Color("214")
	ColorError    = lipgloss.Color("160")
	ColorDropLine = lipgloss.Color("213")
)

// RenderTitle renders a full-width title bar.
func RenderTitle(title string, width int, focused bool) string {
	style := lipgloss.NewStyle().
		Width(width).
		Bold(true)

	if focused {
		style = style.Foreground(ColorTitle).Background(ColorAccent)
	} else {
		style = style.Foreground(ColorText).Background(ColorDim)
	}

	return style.Render(Truncate(title, width))
}

// RenderBorder renders content inside a rounded border sized to width and
// height, including the border itself.
func RenderBorder(content string, width, height int, focused bool) string {
	innerWidth := max(width-2, 1)
	innerHeight := max(height-2, 1)

	style := lipgloss.NewStyle().
		Width(innerWidth).
		Height(innerHeight).
		BorderStyle(lipgloss.RoundedBorder())

	if focused {
		style = style.BorderForeground(ColorAccent)
	} else {
		style = style.BorderForeground(ColorBorder)
	}

	return style.Render(content)
}

// MethodBadge renders a compact colored HTTP method label.
func MethodBadge(method string) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))

	switch strings.ToUpper(method) {
	case "GET":
		return style.Background(ColorSuccess).Render(" GET ")
	case "POST":
		return style.Background(ColorWarning).Foreground(lipgloss.Color("0")).Render(" POST")
	case "PUT":
		return style.Background(lipgloss.Color("33")).Render(" PUT ")
	case "PATCH":
		return style.Background(lipgloss.Color("141")).Render(" PTCH")
	case "DELETE":
		return style.Background(ColorError).Render(" DEL ")
	case "HEAD":
		return style.Background(ColorBorder).Render(" HEAD")
	default:
		return style.Background(ColorBorder).Render(" OPT ")
	}
}

// Truncate cuts s to at most width terminal cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width terminal cells, truncating if longer.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
