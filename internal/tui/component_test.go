package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

type stubComponent struct {
	title         string
	focused       bool
	width, height int
}

func (s *stubComponent) Init() tea.Cmd { return nil }
func (s *stubComponent) Update(tea.Msg) (Component, tea.Cmd) { return s, nil }
func (s *stubComponent) View() string { return s.title }
func (s *stubComponent) Title() string { return s.title }
func (s *stubComponent) Focused() bool { return s.focused }
func (s *stubComponent) Focus() { s.focused = true }
func (s *stubComponent) Blur() { s.focused = false }
func (s *stubComponent) SetSize(width, height int) { s.width, s.height = width, height }
func (s *stubComponent) Width() int { return s.width }
func (s *stubComponent) Height() int { return s.height }

func TestComponentList(t *testing.T) {
	newList := func() (*ComponentList, []*stubComponent) {
		a, b, c := &stubComponent{title: "a"}, &stubComponent{title: "b"}, &stubComponent{title: "c"}
		return NewComponentList(a, b, c), []*stubComponent{a, b, c}
	}

	t.Run("starts with nothing focused", func(t *testing.T) {
		list, _ := newList()
		assert.Equal(t, 3, list.Len())
		assert.Equal(t, -1, list.FocusIndex())
		assert.Nil(t, list.Focused())
	})

	t.Run("focus next wraps around", func(t *testing.T) {
		list, comps := newList()
		list.FocusNext()
		assert.True(t, comps[0].focused)

		list.FocusNext()
		list.FocusNext()
		list.FocusNext()
		assert.Equal(t, 0, list.FocusIndex())
		assert.True(t, comps[0].focused)
		assert.False(t, comps[2].focused)
	})

	t.Run("focus prev wraps around", func(t *testing.T) {
		list, comps := newList()
		list.SetFocusIndex(0)
		list.FocusPrev()
		assert.Equal(t, 2, list.FocusIndex())
		assert.True(t, comps[2].focused)
		assert.False(t, comps[0].focused)
	})

	t.Run("ignores out of range index", func(t *testing.T) {
		list, _ := newList()
		list.SetFocusIndex(1)
		list.SetFocusIndex(7)
		assert.Equal(t, 1, list.FocusIndex())
		assert.Nil(t, list.Get(-1))
	})

	t.Run("empty list is inert", func(t *testing.T) {
		list := NewComponentList()
		list.FocusNext()
		list.FocusPrev()
		assert.Nil(t, list.Focused())
	})

	t.Run("add appends", func(t *testing.T) {
		list := NewComponentList()
		list.Add(&stubComponent{title: "x"})
		assert.Equal(t, "x", list.Get(0).Title())
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 6, "hello…"},
		{"zero width", "hello", 0, ""},
		{"wide runes", "日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, "abcd…", PadRight("abcdefgh", 5))
	assert.Equal(t, "", PadRight("abc", 0))
}

func TestRenderBorder(t *testing.T) {
	out := RenderBorder("content", 20, 5, true)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, 20, lipgloss.Width(out))
	assert.Contains(t, out, "content")
}

func TestRenderTitle(t *testing.T) {
	out := RenderTitle("Collections", 30, false)
	assert.Equal(t, 30, lipgloss.Width(out))
	assert.Contains(t, out, "Collections")
}

func TestMethodBadge(t *testing.T) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"} {
		assert.Equal(t, 5, lipgloss.Width(MethodBadge(m)), m)
	}
}
