package cookies

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore implements Store for testing.
type memoryStore struct {
	mu      sync.Mutex
	cookies map[Key]*Cookie
	putErr  error
}

func newMemoryStore(cs ...*Cookie) *memoryStore {
	m := &memoryStore{cookies: make(map[Key]*Cookie)}
	for _, c := range cs {
		m.cookies[c.Key()] = c
	}
	return m
}

func (m *memoryStore) Put(ctx context.Context, c *Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.cookies[c.Key()] = c
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key Key) (*Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cookies[key]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) List(ctx context.Context, f Filter) ([]*Cookie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Cookie
	for _, c := range m.cookies {
		if f.Domain != "" && !c.MatchesDomain(f.Domain) {
			continue
		}
		if !f.At.IsZero() && c.Expired(f.At) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) Remove(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cookies, key)
	return nil
}

func (m *memoryStore) RemoveDomain(ctx context.Context, domain string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, c := range m.cookies {
		if c.MatchesDomain(domain) {
			delete(m.cookies, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cookies = make(map[Key]*Cookie)
	return nil
}

func (m *memoryStore) Close() error { return nil }

func names(cs []*http.Cookie) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out
}

func TestPersistentJar_LoadsLiveCookies(t *testing.T) {
	future := time.Now().Add(time.Hour)
	store := newMemoryStore(
		&Cookie{Domain: "example.com", Path: "/", Name: "live", Value: "1", Expires: future},
		&Cookie{Domain: "example.com", Path: "/", Name: "session", Value: "2", HostOnly: true},
		&Cookie{Domain: "example.com", Path: "/", Name: "stale", Value: "3", Expires: time.Now().Add(-time.Hour)},
	)

	jar, err := NewPersistentJar(store)
	require.NoError(t, err)

	got := jar.Cookies(mustURL(t, "http://example.com/"))
	assert.Equal(t, []string{"live", "session"}, names(got))

	sub := jar.Cookies(mustURL(t, "http://api.example.com/"))
	assert.Equal(t, []string{"live"}, names(sub), "host-only cookie stays on its host")
}

func TestPersistentJar_SetCookiesPersists(t *testing.T) {
	store := newMemoryStore()
	jar, err := NewPersistentJar(store)
	require.NoError(t, err)

	u := mustURL(t, "https://example.com/login")
	jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "abc", Path: "/"}})

	c, err := store.Get(context.Background(), Key{Domain: "example.com", Path: "/", Name: "sid"})
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, []string{"sid"}, names(jar.Cookies(u)))

	jar.SetCookies(u, []*http.Cookie{{Name: "sid", Path: "/", MaxAge: -1}})
	_, err = store.Get(context.Background(), Key{Domain: "example.com", Path: "/", Name: "sid"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, jar.Cookies(u))
}

func TestPersistentJar_StoreFailureKeepsMemoryCookie(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("disk full")
	jar, err := NewPersistentJar(store)
	require.NoError(t, err)

	u := mustURL(t, "https://example.com/")
	jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: "abc"}})

	assert.Equal(t, []string{"sid"}, names(jar.Cookies(u)))
}

func TestPersistentJar_ClearDomain(t *testing.T) {
	store := newMemoryStore(
		&Cookie{Domain: "api.example.com", Path: "/", Name: "a", Value: "1"},
		&Cookie{Domain: "other.com", Path: "/", Name: "b", Value: "2"},
	)
	jar, err := NewPersistentJar(store)
	require.NoError(t, err)
	ctx := context.Background()

	n, err := jar.ClearDomain(ctx, "example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Empty(t, jar.Cookies(mustURL(t, "http://api.example.com/")))
	assert.Len(t, jar.Cookies(mustURL(t, "http://other.com/")), 1)

	listed, err := jar.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "b", listed[0].Name)

	require.NoError(t, jar.Clear(ctx))
	assert.Empty(t, jar.Cookies(mustURL(t, "http://other.com/")))
}
