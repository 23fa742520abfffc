package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

// newFocusedRequestPanel selects request X of the test store.
func newFocusedRequestPanel(t *testing.T) (*RequestPanel, *workspace.Workspace) {
	t.Helper()
	store := newTestStore(t)
	require.NoError(t, store.Select("c1", tree.Path{"A", "X"}))
	p := NewRequestPanel(store)
	p.SetSize(70, 16)
	p.Focus()
	return p, store
}

func storedX(t *testing.T, store *workspace.Workspace) *core.RequestDefinition {
	t.Helper()
	n, err := store.Find("c1", tree.Path{"A", "X"})
	require.NoError(t, err)
	return n.Request
}

func TestRequestPanel_View(t *testing.T) {
	t.Run("shows the selected request", func(t *testing.T) {
		p, _ := newFocusedRequestPanel(t)
		view := p.View()
		assert.Contains(t, view, "GET")
		assert.Contains(t, view, "https://example.com/X")
		assert.Contains(t, view, "Params")
	})

	t.Run("folder selection shows placeholder", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		require.NoError(t, store.Select("c1", tree.Path{"A"}))
		assert.Contains(t, p.View(), "No request selected")
	})

	t.Run("zero size renders nothing", func(t *testing.T) {
		p := NewRequestPanel(newTestStore(t))
		assert.Empty(t, p.View())
	})
}

func TestRequestPanel_Edits(t *testing.T) {
	t.Run("M cycles the method", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "M")
		assert.Equal(t, "POST", storedX(t, store).Method)
	})

	t.Run("e edits the URL", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "e")
		assert.True(t, p.IsEditing())
		press(p, "ctrl+u")
		typeText(p, "https://api.test/v1")
		press(p, "enter")
		assert.False(t, p.IsEditing())
		assert.Equal(t, "https://api.test/v1", storedX(t, store).URL)
	})

	t.Run("esc abandons an edit", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "e")
		typeText(p, "/more")
		press(p, "esc")
		assert.Equal(t, "https://example.com/X", storedX(t, store).URL)
	})

	t.Run("adds toggles and removes headers", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "l")
		require.Equal(t, TabHeaders, p.ActiveTab())

		press(p, "a")
		typeText(p, "Accept: application/json")
		press(p, "enter")
		assert.Equal(t, []core.KeyValue{{Key: "Accept", Value: "application/json", Enabled: true}}, storedX(t, store).Headers)

		press(p, "space")
		assert.False(t, storedX(t, store).Headers[0].Enabled)

		press(p, "x")
		assert.Empty(t, storedX(t, store).Headers)
	})

	t.Run("adds query params", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "a")
		typeText(p, "page=2")
		press(p, "enter")
		press(p, "a")
		typeText(p, "q = go")
		press(p, "enter")

		def := storedX(t, store)
		require.Len(t, def.Query, 2)
		assert.Equal(t, "https://example.com/X?page=2&q=go", def.FullURL())

		press(p, "j")
		assert.Equal(t, 1, p.Cursor())
		press(p, "j")
		assert.Equal(t, 1, p.Cursor())
	})

	t.Run("malformed row is reported", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "a")
		typeText(p, "novalue")
		cmd := press(p, "enter")
		require.NotNil(t, cmd)
		msg := cmd().(NotifyMsg)
		assert.True(t, msg.Err)
		assert.Contains(t, msg.Text, "key=value")
		assert.Empty(t, storedX(t, store).Query)
	})

	t.Run("toggle on an empty tab is a no-op", func(t *testing.T) {
		p, _ := newFocusedRequestPanel(t)
		assert.Nil(t, press(p, "space"))
		assert.Nil(t, press(p, "x"))
	})

	t.Run("B cycles the body type and a edits content", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		p.SetActiveTab(TabBody)
		press(p, "B")
		assert.Equal(t, core.BodyJSON, storedX(t, store).Body.Type)

		press(p, "a")
		typeText(p, `{"a":1}`)
		press(p, "enter")
		assert.Equal(t, core.Body{Type: core.BodyJSON, Content: `{"a":1}`}, storedX(t, store).Body)
		assert.Contains(t, p.View(), `{"a":1}`)
	})

	t.Run("body content without a type becomes text", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		p.SetActiveTab(TabBody)
		press(p, "a")
		typeText(p, "hello")
		press(p, "enter")
		assert.Equal(t, core.BodyText, storedX(t, store).Body.Type)
	})

	t.Run("auth is set and cleared", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		p.SetActiveTab(TabAuth)
		press(p, "a")
		typeText(p, "bearer abc123")
		press(p, "enter")
		assert.Equal(t, core.NewBearerAuth("abc123"), storedX(t, store).Auth)

		press(p, "X")
		assert.False(t, storedX(t, store).Auth.IsConfigured())
	})

	t.Run("D edits docs with escaped newlines", func(t *testing.T) {
		p, store := newFocusedRequestPanel(t)
		press(p, "D")
		typeText(p, `# Login\nSends credentials.`)
		press(p, "enter")
		assert.Equal(t, "# Login\nSends credentials.", storedX(t, store).Docs)
	})
}

func TestRequestPanel_Commands(t *testing.T) {
	t.Run("enter sends the request", func(t *testing.T) {
		p, _ := newFocusedRequestPanel(t)
		cmd := press(p, "enter")
		require.NotNil(t, cmd)
		msg := cmd().(SendRequestMsg)
		assert.Equal(t, tree.Path{"A", "X"}, msg.Path)
		assert.Equal(t, "X", msg.RequestID())
	})

	t.Run("y copies the full URL", func(t *testing.T) {
		p, _ := newFocusedRequestPanel(t)
		cmd := press(p, "y")
		require.NotNil(t, cmd)
		assert.Equal(t, CopyMsg{Content: "https://example.com/X", Label: "url"}, cmd())
	})

	t.Run("h and l wrap around tabs", func(t *testing.T) {
		p, _ := newFocusedRequestPanel(t)
		press(p, "h")
		assert.Equal(t, TabAuth, p.ActiveTab())
		press(p, "l")
		assert.Equal(t, TabQuery, p.ActiveTab())
	})
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in, sep    string
		key, value string
		ok         bool
	}{
		{"a=b", "=", "a", "b", true},
		{" a = b c ", "=", "a", "b c", true},
		{"a=", "=", "a", "", true},
		{"Content-Type: text/plain", ":", "Content-Type", "text/plain", true},
		{"x=y=z", "=", "x", "y=z", true},
		{"novalue", "=", "", "", false},
		{"=b", "=", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, value, ok := ParsePair(tt.in, tt.sep)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestParseAuth(t *testing.T) {
	tests := []struct {
		in   string
		want core.AuthConfig
	}{
		{"none", core.AuthConfig{}},
		{"basic alice:s3cret", core.NewBasicAuth("alice", "s3cret")},
		{"Bearer tok", core.NewBearerAuth("tok")},
		{"apikey X-Key=abc", core.NewAPIKeyAuth("X-Key", "abc", core.APIKeyInHeader)},
		{"apikey key=abc query", core.NewAPIKeyAuth("key", "abc", core.APIKeyInQuery)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			edit, err := ParseAuth(tt.in)
			require.NoError(t, err)
			def := core.NewRequestDefinition("GET", "https://example.com")
			def.Auth = core.NewBearerAuth("old")
			require.NoError(t, edit(def))
			assert.Equal(t, tt.want, def.Auth)
		})
	}

	for _, bad := range []string{"", "basic alice", "basic :pw", "bearer", "apikey novalue", "apikey k=v cookie", "digest x"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseAuth(bad)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
