// Package history records every request sent, with its outcome.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/postbox/internal/core"
)

var (
	ErrNotFound    = errors.New("history entry not found")
	ErrStoreClosed = errors.New("history store is closed")
)

// DefaultKeep is how many entries are retained after each send.
const DefaultKeep = 500

// Entry is one sent request and its response status or transport error.
type Entry struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	Status     int           `json:"status,omitempty"`
	StatusText string        `json:"status_text,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	Size       int64         `json:"size"`
	Error      string        `json:"error,omitempty"`
}

// NewEntry describes a send of def that produced resp or err.
func NewEntry(def *core.RequestDefinition, resp *core.Response, err error, at time.Time) Entry {
	e := Entry{
		Timestamp: at,
		Method:    def.Method,
		URL:       def.FullURL(),
	}
	if err != nil {
		e.Error = err.Error()
		return e
	}
	e.Status = resp.StatusCode
	e.StatusText = resp.Status
	e.Elapsed = resp.Elapsed
	e.Size = int64(len(resp.Body))
	return e
}

// Failed reports whether the request never produced a response.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Query filters List. Zero values match everything. Entries come newest
// first.
type Query struct {
	Method    string
	URLPrefix string
	After     time.Time
	Limit     int
}

// Store persists history entries.
type Store interface {
	Add(ctx context.Context, entry Entry) (string, error)
	Get(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, q Query) ([]Entry, error)
	// Prune deletes all but the newest keep entries and reports how many
	// went.
	Prune(ctx context.Context, keep int) (int64, error)
	Clear(ctx context.Context) error
	Close() error
}
