package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Cookie is a stored cookie with the attributes needed to replay it.
type Cookie struct {
	ID       string    `json:"id"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	HostOnly bool      `json:"hostOnly"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"httpOnly"`
	SameSite string    `json:"sameSite,omitempty"`
	Expires  time.Time `json:"expires,omitzero"`
	Updated  time.Time `json:"updated"`
}

// Key identifies a cookie the way RFC 6265 does.
type Key struct {
	Domain, Path, Name string
}

func (c *Cookie) Key() Key {
	return Key{Domain: c.Domain, Path: c.Path, Name: c.Name}
}

// Session reports whether the cookie lives only for the browser session.
func (c *Cookie) Session() bool {
	return c.Expires.IsZero()
}

// Expired reports whether the cookie had expired at now.
func (c *Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// MatchesDomain reports whether the cookie belongs to domain or one of its
// subdomains.
func (c *Cookie) MatchesDomain(domain string) bool {
	domain = normalizeDomain(domain)
	return c.Domain == domain || strings.HasSuffix(c.Domain, "."+domain)
}

var sameSiteNames = map[http.SameSite]string{
	http.SameSiteLaxMode:    "lax",
	http.SameSiteStrictMode: "strict",
	http.SameSiteNoneMode:   "none",
}

// HTTP converts the stored cookie back to the form a jar accepts.
func (c *Cookie) HTTP() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
		Expires:  c.Expires,
	}
	if !c.HostOnly {
		hc.Domain = c.Domain
	}
	for mode, name := range sameSiteNames {
		if name == c.SameSite {
			hc.SameSite = mode
		}
	}
	return hc
}

// URL returns an address the cookie would be sent to, used to seed a jar.
func (c *Cookie) URL() *url.URL {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &url.URL{Scheme: scheme, Host: c.Domain, Path: path}
}

// FromHTTP records hc as received from a response to u at time now.
// A negative MaxAge marks the cookie as already expired.
func FromHTTP(u *url.URL, hc *http.Cookie, now time.Time) *Cookie {
	c := &Cookie{
		Domain:   normalizeDomain(hc.Domain),
		Path:     hc.Path,
		Name:     hc.Name,
		Value:    hc.Value,
		Secure:   hc.Secure,
		HttpOnly: hc.HttpOnly,
		SameSite: sameSiteNames[hc.SameSite],
		Expires:  hc.Expires,
		Updated:  now,
	}
	if c.Domain == "" {
		c.Domain = normalizeDomain(u.Hostname())
		c.HostOnly = true
	}
	if c.Path == "" || c.Path[0] != '/' {
		c.Path = defaultPath(u.Path)
	}
	switch {
	case hc.MaxAge > 0:
		c.Expires = now.Add(time.Duration(hc.MaxAge) * time.Second)
	case hc.MaxAge < 0:
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// defaultPath is the RFC 6265 section 5.1.4 default-path of a request path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimPrefix(domain, "."))
}

// Filter selects stored cookies. Zero fields match everything.
type Filter struct {
	// Domain matches the domain and its subdomains.
	Domain string
	Name   string
	// At excludes cookies expired at this time. Zero keeps expired ones.
	At    time.Time
	Limit int
}
