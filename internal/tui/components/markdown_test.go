package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer("notty")

	t.Run("renders headings and text", func(t *testing.T) {
		out := r.Render("# Login\n\nReturns a **session** token.", 60)
		assert.Contains(t, out, "Login")
		assert.Contains(t, out, "session")
	})

	t.Run("empty input renders nothing", func(t *testing.T) {
		assert.Empty(t, r.Render("  \n", 60))
	})

	t.Run("caches one renderer per width", func(t *testing.T) {
		r.Render("a", 40)
		r.Render("b", 40)
		r.Render("c", 3)
		r.Render("d", 10)
		assert.Len(t, r.renderers, 3)
	})

	t.Run("defaults the style", func(t *testing.T) {
		assert.Equal(t, DefaultMarkdownStyle, NewMarkdownRenderer("").style)
	})
}
