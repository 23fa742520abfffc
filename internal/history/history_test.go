package history

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/artpar/postbox/internal/core"
)

func TestNewEntry(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	def := core.NewRequestDefinition("get", "https://api.example.com/items")
	def.Query = []core.KeyValue{{Key: "page", Value: "2", Enabled: true}}

	t.Run("response", func(t *testing.T) {
		resp := &core.Response{
			StatusCode: 201,
			Status:     "201 Created",
			Headers:    http.Header{},
			Body:       []byte("created"),
			Elapsed:    30 * time.Millisecond,
		}
		e := NewEntry(def, resp, nil, at)
		assert.Equal(t, Entry{
			Timestamp:  at,
			Method:     "GET",
			URL:        "https://api.example.com/items?page=2",
			Status:     201,
			StatusText: "201 Created",
			Elapsed:    30 * time.Millisecond,
			Size:       7,
		}, e)
		assert.False(t, e.Failed())
	})

	t.Run("transport error", func(t *testing.T) {
		e := NewEntry(def, nil, errors.New("dial tcp: connection refused"), at)
		assert.True(t, e.Failed())
		assert.Equal(t, "dial tcp: connection refused", e.Error)
		assert.Zero(t, e.Status)
	})
}
