package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against dir and returns what it printed.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand("test")
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--data-dir", dir, "--backend", "file"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dir, args...)
	require.NoError(t, err, strings.Join(args, " "))
	return out
}

func TestNewRootCommand(t *testing.T) {
	t.Run("creates root command", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		assert.Equal(t, "postbox", cmd.Use)
		assert.Equal(t, "1.0.0", cmd.Version)
	})

	t.Run("has persistent flags", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"data-dir", "backend", "collection", "timeout", "debug"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
		}
		assert.Equal(t, "c", cmd.PersistentFlags().Lookup("collection").Shorthand)
	})

	t.Run("has subcommands", func(t *testing.T) {
		cmd := NewRootCommand("1.0.0")
		for _, name := range []string{"tree", "mkdir", "new", "rename", "rm", "mv", "find", "send", "curl", "export", "import", "cookies", "history"} {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, name)
			assert.True(t, strings.HasPrefix(sub.Use, name), name)
		}
	})

	t.Run("rejects an unknown backend", func(t *testing.T) {
		out := &bytes.Buffer{}
		cmd := NewRootCommand("test")
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--data-dir", t.TempDir(), "--backend", "mongo", "tree"})
		assert.Error(t, cmd.Execute())
	})
}

func TestSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) string {
		out := &bytes.Buffer{}
		cmd := NewRootCommand("test")
		cmd.SetOut(out)
		cmd.SetArgs(append([]string{"--data-dir", dir, "--backend", "sqlite"}, args...))
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	run("mkdir", "auth")
	assert.Contains(t, run("tree"), "auth/")
}
