package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/history"
	historysqlite "github.com/artpar/postbox/internal/history/sqlite"
	"github.com/artpar/postbox/internal/logging"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

func testConfig(t *testing.T, backend string) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Backend = backend
	cfg.Timeout = 5 * time.Second
	return cfg
}

func openApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a, err := New(context.Background(), WithConfig(cfg), WithLogger(logging.Nop()))
	require.NoError(t, err)
	return a
}

func TestDefaultConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		t.Setenv(EnvBackend, "")
		cfg := DefaultConfig()
		assert.Equal(t, BackendFile, cfg.Backend)
		assert.Equal(t, workspace.DefaultIndentation, cfg.Indentation)
		assert.True(t, cfg.FollowRedirects)
		assert.NotEmpty(t, cfg.DataDir)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv(EnvDataDir, "/tmp/postbox-test")
		t.Setenv(EnvBackend, "SQLite")
		cfg := DefaultConfig()
		assert.Equal(t, "/tmp/postbox-test", cfg.DataDir)
		assert.Equal(t, BackendSQLite, cfg.Backend)
	})
}

func TestConfig_ValidateHistoryKeep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryKeep = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "redis"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)

	cfg = DefaultConfig()
	cfg.Indentation = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DataDir = ""
	assert.Error(t, cfg.Validate())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "redis")
	_, err := New(context.Background(), WithConfig(cfg), WithLogger(logging.Nop()))
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestApp_PersistsAcrossRestarts(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)

			a := openApp(t, cfg)
			p, ok := a.Store().ActiveProject()
			require.True(t, ok)
			assert.Equal(t, workspace.DefaultProjectName, p.Name)
			require.Len(t, p.Collections, 1)
			collID := p.Collections[0].ID

			n := tree.NewRequest("health", core.NewRequestDefinition("GET", "https://api.test/health"))
			require.NoError(t, a.Store().Create(collID, nil, n))
			require.NoError(t, a.Store().EditRequest(collID, tree.Path{n.ID}, workspace.SetDocs("Liveness probe.")))
			require.NoError(t, a.Close())

			reopened := openApp(t, cfg)
			defer reopened.Close()
			got, err := reopened.Store().Find(collID, tree.Path{n.ID})
			require.NoError(t, err)
			assert.Equal(t, "health", got.Name)
			assert.Equal(t, "Liveness probe.", got.Request.Docs)
		})
	}
}

func TestApp_NonPersistentChangesAreNotSaved(t *testing.T) {
	cfg := testConfig(t, BackendFile)
	a := openApp(t, cfg)
	defer a.Close()

	a.Store().SetResponse("x", &core.Response{StatusCode: 200})
	_, err := os.Stat(filepath.Join(cfg.DataDir, "state"))
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(cfg.DataDir, "state"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApp_SendKeepsCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/", MaxAge: 3600})
			return
		}
		c, err := r.Cookie("sid")
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(c.Value))
	}))
	defer server.Close()

	cfg := testConfig(t, BackendSQLite)
	a := openApp(t, cfg)
	ctx := context.Background()

	_, err := a.Send(ctx, core.NewRequestDefinition("POST", server.URL+"/login"))
	require.NoError(t, err)
	resp, err := a.Send(ctx, core.NewRequestDefinition("GET", server.URL+"/me"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(resp.Body))
	require.NoError(t, a.Close())

	reopened := openApp(t, cfg)
	defer reopened.Close()
	stored, err := reopened.Cookies().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "sid", stored[0].Name)

	resp, err = reopened.Send(ctx, core.NewRequestDefinition("GET", server.URL+"/me"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApp_NoRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := testConfig(t, BackendFile)
	cfg.FollowRedirects = false
	a := openApp(t, cfg)
	defer a.Close()

	resp, err := a.Send(context.Background(), core.NewRequestDefinition("GET", server.URL+"/old"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestApp_SendRecordsHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	defer server.Close()

	store, err := historysqlite.NewInMemory()
	require.NoError(t, err)

	cfg := testConfig(t, BackendFile)
	cfg.HistoryKeep = 2
	a, err := New(context.Background(), WithConfig(cfg), WithLogger(logging.Nop()), WithHistoryStore(store))
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	for _, path := range []string{"/a", "/b", "/c"} {
		_, err := a.Send(ctx, core.NewRequestDefinition("GET", server.URL+path))
		require.NoError(t, err)
	}
	_, err = a.Send(ctx, core.NewRequestDefinition("GET", "http://127.0.0.1:1/down"))
	require.Error(t, err)

	entries, err := a.History().List(ctx, history.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Failed())
	assert.Equal(t, "http://127.0.0.1:1/down", entries[0].URL)
	assert.Equal(t, server.URL+"/c", entries[1].URL)
	assert.Equal(t, http.StatusOK, entries[1].Status)
	assert.Equal(t, int64(4), entries[1].Size)
}

func TestApp_CloseIsIdempotent(t *testing.T) {
	a := openApp(t, testConfig(t, BackendFile))
	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestApp_FileLogging(t *testing.T) {
	cfg := testConfig(t, BackendFile)
	a, err := New(context.Background(), WithConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(filepath.Join(cfg.DataDir, logging.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "postbox started")
}
