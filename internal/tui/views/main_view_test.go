package views

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/tui/components"
	"github.com/artpar/postbox/internal/workspace"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*core.RequestDefinition
	resp *core.Response
	err  error
}

func (f *fakeSender) Send(ctx context.Context, def *core.RequestDefinition) (*core.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("send without deadline")
	}
	f.sent = append(f.sent, def)
	return f.resp, f.err
}

type fakeClipboard struct {
	content string
	err     error
}

func (f *fakeClipboard) WriteAll(s string) error {
	if f.err != nil {
		return f.err
	}
	f.content = s
	return nil
}

func newStore(t *testing.T) *workspace.Workspace {
	t.Helper()
	login := core.NewRequestDefinition("POST", "https://api.test/login")
	login.Docs = "# Login\n\nReturns a session token."
	state := &workspace.State{
		Projects: []*workspace.Project{{
			ID:   "p1",
			Name: "Billing",
			Collections: []*workspace.Collection{{
				ID:   "c1",
				Name: "API",
				Items: []*tree.Node{
					{ID: "auth", Name: "auth", Kind: tree.KindFolder, Children: []*tree.Node{
						{ID: "login", Name: "login", Kind: tree.KindRequest, Request: login},
					}},
					{ID: "health", Name: "health", Kind: tree.KindRequest, Request: core.NewRequestDefinition("GET", "https://api.test/health")},
				},
			}},
		}},
		ActiveProject: "p1",
	}
	w, err := workspace.New(state)
	require.NoError(t, err)
	return w
}

func newView(t *testing.T, sender Sender, opts ...Option) (*MainView, *workspace.Workspace) {
	t.Helper()
	store := newStore(t)
	opts = append([]Option{WithDocsStyle("notty"), WithClipboard((&fakeClipboard{}).WriteAll)}, opts...)
	v := NewMainView(store, sender, opts...)
	v.SetSize(120, 40)
	return v, store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(v *MainView, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = v.Update(key(k))
	}
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewMainView(t *testing.T) {
	v, _ := newView(t, nil)

	assert.Equal(t, PaneCollections, v.FocusedPane())
	assert.True(t, v.CollectionTree().Focused())
	assert.False(t, v.RequestPanel().Focused())
	assert.Equal(t, "postbox", v.Title())
}

func TestMainView_Focus(t *testing.T) {
	t.Run("tab cycles panes", func(t *testing.T) {
		v, _ := newView(t, nil)
		press(v, "tab")
		assert.Equal(t, PaneRequest, v.FocusedPane())
		assert.True(t, v.RequestPanel().Focused())
		assert.False(t, v.CollectionTree().Focused())
		press(v, "tab", "tab")
		assert.Equal(t, PaneCollections, v.FocusedPane())
		press(v, "shift+tab")
		assert.Equal(t, PaneResponse, v.FocusedPane())
	})

	t.Run("number keys jump to panes", func(t *testing.T) {
		v, _ := newView(t, nil)
		press(v, "3")
		assert.Equal(t, PaneResponse, v.FocusedPane())
		press(v, "2")
		assert.Equal(t, PaneRequest, v.FocusedPane())
		press(v, "1")
		assert.Equal(t, PaneCollections, v.FocusedPane())
	})

	t.Run("pane names", func(t *testing.T) {
		assert.Equal(t, "Collections", PaneCollections.String())
		assert.Equal(t, "Request", PaneRequest.String())
		assert.Equal(t, "Response", PaneResponse.String())
	})
}

func TestMainView_Quit(t *testing.T) {
	t.Run("q quits while browsing", func(t *testing.T) {
		v, _ := newView(t, nil)
		assert.True(t, isQuit(press(v, "q")))
	})

	t.Run("q does not quit in move mode", func(t *testing.T) {
		v, _ := newView(t, nil)
		press(v, "m")
		require.Equal(t, components.TreeMove, v.CollectionTree().Mode())
		assert.False(t, isQuit(press(v, "q")))
	})

	t.Run("q is typed while renaming", func(t *testing.T) {
		v, _ := newView(t, nil)
		press(v, "n")
		require.True(t, v.CollectionTree().IsEditing())
		assert.False(t, isQuit(press(v, "q")))
		assert.False(t, v.ShowingDocs())
	})

	t.Run("ctrl+c always quits", func(t *testing.T) {
		v, _ := newView(t, nil)
		press(v, "n")
		assert.True(t, isQuit(press(v, "ctrl+c")))
	})
}

func TestMainView_Send(t *testing.T) {
	send := func(t *testing.T, v *MainView, store *workspace.Workspace) {
		t.Helper()
		n, err := store.Find("c1", tree.Path{"health"})
		require.NoError(t, err)
		_, cmd := v.Update(components.SendRequestMsg{CollectionID: "c1", Path: tree.Path{"health"}, Request: n.Request.Clone()})
		require.NotNil(t, cmd)
		assert.True(t, v.ResponsePanel().IsLoading("health"))

		msg := cmd()
		require.IsType(t, components.ResponseMsg{}, msg)
		v.Update(msg)
		assert.False(t, v.ResponsePanel().IsLoading("health"))
	}

	t.Run("stores the response", func(t *testing.T) {
		sender := &fakeSender{resp: &core.Response{StatusCode: 200, Status: "200 OK", Headers: http.Header{}, Body: []byte("up")}}
		v, store := newView(t, sender)
		send(t, v, store)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "https://api.test/health", sender.sent[0].URL)
		state, ok := store.Response("health")
		require.True(t, ok)
		assert.False(t, state.Failed())
		assert.Equal(t, []byte("up"), state.Response.Body)
	})

	t.Run("stores the error and notifies", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("connection refused")}
		v, store := newView(t, sender)
		send(t, v, store)

		state, ok := store.Response("health")
		require.True(t, ok)
		assert.Equal(t, "connection refused", state.Err)
		assert.Equal(t, "✗ connection refused", v.Notification())
	})

	t.Run("missing sender is an error", func(t *testing.T) {
		v, store := newView(t, nil)
		send(t, v, store)

		state, ok := store.Response("health")
		require.True(t, ok)
		assert.Contains(t, state.Err, "no HTTP client")
	})

	t.Run("enter on a request in the tree sends it", func(t *testing.T) {
		v, store := newView(t, &fakeSender{resp: &core.Response{StatusCode: 204, Status: "204 No Content"}})
		require.NoError(t, store.Select("c1", tree.Path{"health"}))
		v.CollectionTree().Refresh()

		cmd := press(v, "enter")
		require.NotNil(t, cmd)
		msg, ok := cmd().(components.SendRequestMsg)
		require.True(t, ok)
		assert.Equal(t, "health", msg.RequestID())
	})
}

func TestMainView_Notifications(t *testing.T) {
	t.Run("notify messages are prefixed", func(t *testing.T) {
		v, _ := newView(t, nil)
		v.Update(components.NotifyMsg{Text: "saved"})
		assert.Equal(t, "✓ saved", v.Notification())
		v.Update(components.NotifyMsg{Text: "nope", Err: true})
		assert.Equal(t, "✗ nope", v.Notification())
	})

	t.Run("only the latest notification is cleared", func(t *testing.T) {
		v, _ := newView(t, nil)
		_, first := v.Update(components.NotifyMsg{Text: "one"})
		require.NotNil(t, first)
		v.Update(components.NotifyMsg{Text: "two"})

		v.Update(clearNotificationMsg{seq: 1})
		assert.Equal(t, "✓ two", v.Notification())
		v.Update(clearNotificationMsg{seq: 2})
		assert.Empty(t, v.Notification())
	})

	t.Run("status bar shows the notification", func(t *testing.T) {
		v, _ := newView(t, nil)
		v.Update(components.NotifyMsg{Text: "saved"})
		assert.Contains(t, v.View(), "✓ saved")
	})
}

func TestMainView_Copy(t *testing.T) {
	t.Run("copies to the clipboard", func(t *testing.T) {
		clip := &fakeClipboard{}
		v, _ := newView(t, nil, WithClipboard(clip.WriteAll))
		v.Update(components.CopyMsg{Content: "abc", Label: "url"})
		assert.Equal(t, "abc", clip.content)
		assert.Equal(t, "✓ Copied url (3B)", v.Notification())
	})

	t.Run("reports clipboard failures", func(t *testing.T) {
		clip := &fakeClipboard{err: errors.New("no clipboard")}
		v, _ := newView(t, nil, WithClipboard(clip.WriteAll))
		v.Update(components.CopyMsg{Content: "abc", Label: "url"})
		assert.Equal(t, "✗ Copy failed: no clipboard", v.Notification())
	})

	t.Run("y in the tree copies curl", func(t *testing.T) {
		clip := &fakeClipboard{}
		v, store := newView(t, nil, WithClipboard(clip.WriteAll))
		require.NoError(t, store.Select("c1", tree.Path{"health"}))
		v.CollectionTree().Refresh()

		cmd := press(v, "y")
		require.NotNil(t, cmd)
		v.Update(cmd())
		assert.Contains(t, clip.content, "curl")
		assert.Contains(t, clip.content, "https://api.test/health")
	})
}

func TestMainView_Docs(t *testing.T) {
	v, store := newView(t, nil)
	require.NoError(t, store.Select("c1", tree.Path{"auth", "login"}))

	press(v, "?")
	require.True(t, v.ShowingDocs())
	view := v.View()
	assert.Contains(t, view, "Login")
	assert.Contains(t, view, "session token")
	assert.Contains(t, view, "Keys")

	assert.False(t, isQuit(press(v, "q")))
	assert.False(t, v.ShowingDocs())

	press(v, "?")
	press(v, "esc")
	assert.False(t, v.ShowingDocs())

	require.NoError(t, store.Select("c1", tree.Path{"auth"}))
	press(v, "?")
	assert.Contains(t, v.View(), "No docs")
}

func TestMainView_View(t *testing.T) {
	t.Run("empty before sizing", func(t *testing.T) {
		v := NewMainView(newStore(t), nil)
		assert.Empty(t, v.View())
	})

	t.Run("fills the terminal", func(t *testing.T) {
		v, _ := newView(t, nil)
		view := v.View()
		assert.Equal(t, 40, lipgloss.Height(view))
		for _, line := range strings.Split(view, "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), 120)
		}
		assert.Contains(t, view, "Collections")
		assert.Contains(t, view, "Request")
		assert.Contains(t, view, "Response")
		assert.Contains(t, view, "Billing")
		assert.Contains(t, view, "NORMAL")
	})

	t.Run("pane sizes follow the window", func(t *testing.T) {
		v, _ := newView(t, nil)
		v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
		assert.Equal(t, 100, v.Width())
		assert.Equal(t, 30, v.Height())
		assert.Equal(t, 100, v.CollectionTree().Width()+v.RequestPanel().Width())
		assert.Equal(t, 29, v.RequestPanel().Height()+v.ResponsePanel().Height())
	})
}

func TestModel(t *testing.T) {
	m := Model{Main: NewMainView(newStore(t), nil, WithDocsStyle("notty"))}
	assert.Nil(t, m.Init())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	require.IsType(t, Model{}, updated)
	assert.NotEmpty(t, updated.View())
}
