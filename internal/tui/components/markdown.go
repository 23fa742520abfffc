package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// DefaultMarkdownStyle is the glamour standard style used for request docs.
const DefaultMarkdownStyle = "dark"

// MarkdownRenderer renders request documentation for the terminal. One
// glamour renderer is cached per wrap width.
type MarkdownRenderer struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer using a glamour standard style
// ("dark", "light", "ascii", "notty"). Auto style is avoided since it
// queries the terminal.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	if style == "" {
		style = DefaultMarkdownStyle
	}
	return &MarkdownRenderer{
		style:     style,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render returns md formatted for width columns. On renderer failure the
// raw markdown is returned.
func (m *MarkdownRenderer) Render(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	width = max(width, 10)

	r, err := m.renderer(width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}
