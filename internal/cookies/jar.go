package cookies

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// PersistentJar is an http.CookieJar that mirrors every cookie it accepts
// into a Store and is seeded from it on creation.
type PersistentJar struct {
	mu     sync.RWMutex
	jar    *cookiejar.Jar
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// JarOption configures a PersistentJar.
type JarOption func(*PersistentJar)

// WithJarLogger sets where persistence failures are reported. The
// http.CookieJar interface has no way to return them.
func WithJarLogger(logger *slog.Logger) JarOption {
	return func(pj *PersistentJar) {
		if logger != nil {
			pj.logger = logger
		}
	}
}

// NewPersistentJar creates a jar backed by store and loads the cookies that
// have not expired yet.
func NewPersistentJar(store Store, opts ...JarOption) (*PersistentJar, error) {
	pj := &PersistentJar{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(pj)
	}
	if err := pj.reload(context.Background()); err != nil {
		return nil, err
	}
	return pj, nil
}

// reload replaces the in-memory jar with the live contents of the store.
// Callers hold pj.mu or have exclusive access.
func (pj *PersistentJar) reload(ctx context.Context) error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	stored, err := pj.store.List(ctx, Filter{At: pj.now()})
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	for _, c := range stored {
		jar.SetCookies(c.URL(), []*http.Cookie{c.HTTP()})
	}
	pj.jar = jar
	return nil
}

// SetCookies implements http.CookieJar.
func (pj *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	pj.mu.Lock()
	defer pj.mu.Unlock()

	pj.jar.SetCookies(u, cookies)

	ctx := context.Background()
	now := pj.now()
	for _, hc := range cookies {
		c := FromHTTP(u, hc, now)
		var err error
		if c.Expired(now) {
			err = pj.store.Remove(ctx, c.Key())
		} else {
			err = pj.store.Put(ctx, c)
		}
		if err != nil {
			pj.logger.Warn("persist cookie",
				slog.String("domain", c.Domain),
				slog.String("name", c.Name),
				slog.Any("error", err))
		}
	}
}

// Cookies implements http.CookieJar.
func (pj *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	pj.mu.RLock()
	defer pj.mu.RUnlock()
	return pj.jar.Cookies(u)
}

// List returns the stored cookies that are still live, optionally limited
// to a domain and its subdomains.
func (pj *PersistentJar) List(ctx context.Context, domain string) ([]*Cookie, error) {
	pj.mu.RLock()
	defer pj.mu.RUnlock()
	return pj.store.List(ctx, Filter{Domain: domain, At: pj.now()})
}

// ClearDomain forgets every cookie of domain and its subdomains and returns
// how many were removed.
func (pj *PersistentJar) ClearDomain(ctx context.Context, domain string) (int64, error) {
	pj.mu.Lock()
	defer pj.mu.Unlock()

	n, err := pj.store.RemoveDomain(ctx, domain)
	if err != nil {
		return 0, err
	}
	return n, pj.reload(ctx)
}

// Clear forgets every cookie.
func (pj *PersistentJar) Clear(ctx context.Context) error {
	pj.mu.Lock()
	defer pj.mu.Unlock()

	if err := pj.store.Clear(ctx); err != nil {
		return err
	}
	return pj.reload(ctx)
}

// Close closes the underlying store.
func (pj *PersistentJar) Close() error {
	return pj.store.Close()
}

var _ http.CookieJar = (*PersistentJar)(nil)
