// Package app wires the workspace, its persistence, the cookie jar and the
// HTTP client from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/artpar/postbox/internal/cookies"
	cookiesqlite "github.com/artpar/postbox/internal/cookies/sqlite"
	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/history"
	historysqlite "github.com/artpar/postbox/internal/history/sqlite"
	"github.com/artpar/postbox/internal/logging"
	httpclient "github.com/artpar/postbox/internal/protocol/http"
	"github.com/artpar/postbox/internal/storage"
	"github.com/artpar/postbox/internal/storage/filesystem"
	"github.com/artpar/postbox/internal/storage/sqlite"
	"github.com/artpar/postbox/internal/workspace"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Environment variables read by DefaultConfig.
const (
	EnvDataDir = "POSTBOX_DATA_DIR"
	EnvBackend = "POSTBOX_BACKEND"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Config holds application configuration.
type Config struct {
	DataDir         string
	Backend         string
	Timeout         time.Duration
	Indentation     int
	FollowRedirects bool
	// HistoryKeep is how many sends the history retains.
	HistoryKeep int
	Debug       bool
}

// DefaultConfig returns the default configuration with environment
// overrides applied.
func DefaultConfig() Config {
	cfg := Config{
		DataDir:         defaultDataDir(),
		Backend:         BackendFile,
		Timeout:         httpclient.DefaultTimeout,
		Indentation:     workspace.DefaultIndentation,
		FollowRedirects: true,
		HistoryKeep:     history.DefaultKeep,
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.DataDir = dir
	}
	if backend := os.Getenv(EnvBackend); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}
	return cfg
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "postbox")
	}
	return ".postbox"
}

// Validate checks the backend name and numeric settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.DataDir == "" {
		return errors.New("data directory is empty")
	}
	if c.Indentation < 1 {
		return fmt.Errorf("indentation must be positive, got %d", c.Indentation)
	}
	if c.HistoryKeep < 0 {
		return fmt.Errorf("history size must not be negative, got %d", c.HistoryKeep)
	}
	return nil
}

// App is the main application container.
type App struct {
	config Config

	logger    *slog.Logger
	logCloser io.Closer

	kv          storage.KV
	cookieStore cookies.Store
	store       *workspace.Workspace
	jar         *cookies.PersistentJar
	client      *httpclient.Client
	history     history.Store

	unsubscribe func()
	saveMu      sync.Mutex
	closeOnce   sync.Once
}

// Option configures the App.
type Option func(*App)

// WithConfig sets the application configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithLogger replaces the file logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithKV replaces the configured state backend.
func WithKV(kv storage.KV) Option {
	return func(a *App) {
		a.kv = kv
	}
}

// WithCookieStore replaces the SQLite cookie database.
func WithCookieStore(store cookies.Store) Option {
	return func(a *App) {
		a.cookieStore = store
	}
}

// WithHistoryStore replaces the SQLite history database.
func WithHistoryStore(store history.Store) Option {
	return func(a *App) {
		a.history = store
	}
}

// New loads the saved workspace and wires everything around it. Persistent
// workspace changes are saved as they happen.
func New(ctx context.Context, opts ...Option) (*App, error) {
	a := &App{config: DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	if err := a.open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg := a.config
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if a.logger == nil {
		logger, closer, err := logging.Init(cfg.DataDir, cfg.Debug)
		if err != nil {
			return err
		}
		a.logger, a.logCloser = logger, closer
	}

	if a.kv == nil {
		kv, err := openKV(cfg, a.logger)
		if err != nil {
			return err
		}
		a.kv = kv
	}

	state, err := storage.Load(ctx, a.kv)
	if err != nil {
		return err
	}
	a.store, err = workspace.New(state,
		workspace.WithIndentation(cfg.Indentation),
		workspace.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	if a.cookieStore == nil {
		if a.cookieStore, err = cookiesqlite.New(filepath.Join(cfg.DataDir, "cookies.db")); err != nil {
			return err
		}
	}
	a.jar, err = cookies.NewPersistentJar(a.cookieStore, cookies.WithJarLogger(a.logger))
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}

	clientOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithJar(a.jar),
		httpclient.WithLogger(a.logger),
	}
	if !cfg.FollowRedirects {
		clientOpts = append(clientOpts, httpclient.WithNoRedirects())
	}
	a.client = httpclient.NewClient(clientOpts...)

	if a.history == nil {
		if a.history, err = historysqlite.New(filepath.Join(cfg.DataDir, "history.db")); err != nil {
			return err
		}
	}

	a.unsubscribe = a.store.Subscribe(func(ev workspace.Event) {
		if !ev.Persistent() {
			return
		}
		if err := a.Save(context.Background()); err != nil {
			a.logger.Error("save workspace", slog.Any("error", err))
		}
	})

	a.logger.Info("postbox started",
		slog.String("data_dir", cfg.DataDir),
		slog.String("backend", cfg.Backend))
	return nil
}

func openKV(cfg Config, logger *slog.Logger) (storage.KV, error) {
	switch cfg.Backend {
	case BackendSQLite:
		return sqlite.New(filepath.Join(cfg.DataDir, "postbox.db"))
	case BackendFile:
		return filesystem.New(filepath.Join(cfg.DataDir, "state"), filesystem.WithLogger(logger))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

// Config returns the application configuration.
func (a *App) Config() Config {
	return a.config
}

// Store returns the workspace.
func (a *App) Store() *workspace.Workspace {
	return a.store
}

// Cookies returns the persistent cookie jar used by the HTTP client.
func (a *App) Cookies() *cookies.PersistentJar {
	return a.jar
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// History returns the log of sent requests.
func (a *App) History() history.Store {
	return a.history
}

// Send sends def with the configured HTTP client and records the outcome
// in the history. History failures are logged, never returned.
func (a *App) Send(ctx context.Context, def *core.RequestDefinition) (*core.Response, error) {
	resp, err := a.client.Send(ctx, def)
	a.record(history.NewEntry(def, resp, err, time.Now()))
	return resp, err
}

func (a *App) record(entry history.Entry) {
	ctx := context.Background()
	if _, err := a.history.Add(ctx, entry); err != nil {
		a.logger.Warn("record history", slog.Any("error", err))
		return
	}
	if n, err := a.history.Prune(ctx, a.config.HistoryKeep); err != nil {
		a.logger.Warn("prune history", slog.Any("error", err))
	} else if n > 0 {
		a.logger.Debug("pruned history", slog.Int64("removed", n))
	}
}

// Save writes the current workspace snapshot.
func (a *App) Save(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	return storage.Save(ctx, a.kv, a.store.Snapshot())
}

// Close stops saving and releases the stores and the log file.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		if a.jar != nil {
			errs = append(errs, a.jar.Close())
		} else if a.cookieStore != nil {
			errs = append(errs, a.cookieStore.Close())
		}
		if a.history != nil {
			errs = append(errs, a.history.Close())
		}
		if a.kv != nil {
			errs = append(errs, a.kv.Close())
		}
		if a.logCloser != nil {
			errs = append(errs, a.logCloser.Close())
		}
	})
	return errors.Join(errs...)
}
