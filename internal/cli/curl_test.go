package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/postbox/internal/tree"
)

func TestCurlCommand(t *testing.T) {
	dir := seed(t)

	t.Run("prints the request", func(t *testing.T) {
		out := mustExecute(t, dir, "curl", "auth/login")
		assert.Equal(t, "curl -X POST https://api.example.com/login\n", out)
	})

	t.Run("rejects folders", func(t *testing.T) {
		_, err := execute(t, dir, "curl", "auth")
		assert.ErrorContains(t, err, "auth is a folder")
	})

	t.Run("unknown path", func(t *testing.T) {
		_, err := execute(t, dir, "curl", "auth/nope")
		assert.ErrorIs(t, err, tree.ErrPathNotFound)
	})
}
