package cookies

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFromHTTP(t *testing.T) {
	u := mustURL(t, "https://API.example.com/v1/users")

	t.Run("host-only cookie takes host and default path", func(t *testing.T) {
		c := FromHTTP(u, &http.Cookie{Name: "sid", Value: "abc"}, epoch)

		assert.Equal(t, "api.example.com", c.Domain)
		assert.True(t, c.HostOnly)
		assert.Equal(t, "/v1", c.Path)
		assert.True(t, c.Session())
		assert.Equal(t, epoch, c.Updated)
	})

	t.Run("domain cookie is normalized", func(t *testing.T) {
		c := FromHTTP(u, &http.Cookie{Name: "pref", Domain: ".Example.com", Path: "/", SameSite: http.SameSiteLaxMode}, epoch)

		assert.Equal(t, "example.com", c.Domain)
		assert.False(t, c.HostOnly)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, "lax", c.SameSite)
	})

	t.Run("max-age wins over expires", func(t *testing.T) {
		c := FromHTTP(u, &http.Cookie{Name: "a", MaxAge: 60, Expires: epoch.Add(time.Hour)}, epoch)
		assert.Equal(t, epoch.Add(time.Minute), c.Expires)
	})

	t.Run("negative max-age is expired", func(t *testing.T) {
		c := FromHTTP(u, &http.Cookie{Name: "a", MaxAge: -1}, epoch)
		assert.True(t, c.Expired(epoch))
	})
}

func TestCookie_HTTP(t *testing.T) {
	c := &Cookie{Domain: "example.com", Path: "/", Name: "a", Value: "1", HostOnly: true, Secure: true, SameSite: "strict"}

	hc := c.HTTP()
	assert.Empty(t, hc.Domain, "host-only cookies carry no Domain attribute")
	assert.Equal(t, http.SameSiteStrictMode, hc.SameSite)
	assert.True(t, hc.Secure)

	c.HostOnly = false
	assert.Equal(t, "example.com", c.HTTP().Domain)
	assert.Equal(t, "https://example.com/", c.URL().String())
}

func TestCookie_Expired(t *testing.T) {
	c := &Cookie{}
	assert.False(t, c.Expired(epoch), "session cookie")

	c.Expires = epoch
	assert.True(t, c.Expired(epoch))
	assert.False(t, c.Expired(epoch.Add(-time.Second)))
}

func TestCookie_MatchesDomain(t *testing.T) {
	c := &Cookie{Domain: "api.example.com"}
	assert.True(t, c.MatchesDomain("example.com"))
	assert.True(t, c.MatchesDomain(".API.example.com"))
	assert.False(t, c.MatchesDomain("ample.com"))
	assert.False(t, c.MatchesDomain("other.com"))
}

func TestDefaultPath(t *testing.T) {
	tests := map[string]string{
		"":          "/",
		"/":         "/",
		"/users":    "/",
		"/v1/users": "/v1",
		"relative":  "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, defaultPath(in), in)
	}
}
