package cookies

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("cookie not found")
	ErrStoreClosed = errors.New("cookie store is closed")
)

// Store persists cookies between runs.
type Store interface {
	// Put inserts or replaces the cookie with the same Key.
	Put(ctx context.Context, c *Cookie) error
	Get(ctx context.Context, key Key) (*Cookie, error)
	// List returns matching cookies ordered by domain, path and name.
	List(ctx context.Context, f Filter) ([]*Cookie, error)
	Remove(ctx context.Context, key Key) error
	// RemoveDomain drops the cookies of domain and its subdomains.
	RemoveDomain(ctx context.Context, domain string) (int64, error)
	Clear(ctx context.Context) error
	Close() error
}
