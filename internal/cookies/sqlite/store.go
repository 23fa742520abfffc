package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/artpar/postbox/internal/cookies"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const columns = "id, domain, path, name, value, host_only, secure, http_only, same_site, expires, updated_at"

// Store implements cookies.Store using SQLite. Times are stored in UTC so
// that expiry comparisons in SQL order correctly.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// New opens or creates the cookie database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	return open(db)
}

// NewInMemory creates a throwaway store.
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return open(db)
}

func open(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cookie database: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cookies (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			host_only INTEGER NOT NULL DEFAULT 0,
			secure INTEGER NOT NULL DEFAULT 0,
			http_only INTEGER NOT NULL DEFAULT 0,
			same_site TEXT NOT NULL DEFAULT '',
			expires DATETIME,
			updated_at DATETIME NOT NULL,
			UNIQUE(domain, path, name)
		);

		CREATE INDEX IF NOT EXISTS idx_cookies_domain ON cookies(domain);
		CREATE INDEX IF NOT EXISTS idx_cookies_expires ON cookies(expires);
	`)
	return err
}

// Put inserts c or replaces the cookie with the same domain, path and
// name, keeping the original id.
func (s *Store) Put(ctx context.Context, c *cookies.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cookies.ErrStoreClosed
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cookies (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain, path, name) DO UPDATE SET
			value = excluded.value,
			host_only = excluded.host_only,
			secure = excluded.secure,
			http_only = excluded.http_only,
			same_site = excluded.same_site,
			expires = excluded.expires,
			updated_at = excluded.updated_at
	`,
		c.ID, c.Domain, c.Path, c.Name, c.Value,
		c.HostOnly, c.Secure, c.HttpOnly, c.SameSite,
		nullTime(c), c.Updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("store cookie %s: %w", c.Name, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key cookies.Key) (*cookies.Cookie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, cookies.ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM cookies WHERE domain = ? AND path = ? AND name = ?`,
		key.Domain, key.Path, key.Name)
	c, err := scanCookie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cookies.ErrNotFound
	}
	return c, err
}

func (s *Store) List(ctx context.Context, f cookies.Filter) ([]*cookies.Cookie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, cookies.ErrStoreClosed
	}

	var conditions []string
	var args []any
	if f.Domain != "" {
		domain := strings.ToLower(strings.TrimPrefix(f.Domain, "."))
		conditions = append(conditions, "(domain = ? OR domain LIKE ?)")
		args = append(args, domain, "%."+domain)
	}
	if f.Name != "" {
		conditions = append(conditions, "name = ?")
		args = append(args, f.Name)
	}
	if !f.At.IsZero() {
		conditions = append(conditions, "(expires IS NULL OR expires > ?)")
		args = append(args, f.At.UTC())
	}

	query := "SELECT " + columns + " FROM cookies"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY domain, path, name"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cookies: %w", err)
	}
	defer rows.Close()

	var out []*cookies.Cookie
	for rows.Next() {
		c, err := scanCookie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Remove(ctx context.Context, key cookies.Key) error {
	return s.exec(ctx, `DELETE FROM cookies WHERE domain = ? AND path = ? AND name = ?`,
		key.Domain, key.Path, key.Name)
}

func (s *Store) RemoveDomain(ctx context.Context, domain string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, cookies.ErrStoreClosed
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE domain = ? OR domain LIKE ?`, domain, "%."+domain)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Clear(ctx context.Context) error {
	return s.exec(ctx, `DELETE FROM cookies`)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return cookies.ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func nullTime(c *cookies.Cookie) any {
	if c.Session() {
		return nil
	}
	return c.Expires.UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCookie(row scanner) (*cookies.Cookie, error) {
	var c cookies.Cookie
	var expires sql.NullTime
	err := row.Scan(
		&c.ID, &c.Domain, &c.Path, &c.Name, &c.Value,
		&c.HostOnly, &c.Secure, &c.HttpOnly, &c.SameSite,
		&expires, &c.Updated,
	)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		c.Expires = expires.Time
	}
	return &c, nil
}

var _ cookies.Store = (*Store)(nil)
