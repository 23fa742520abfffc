package core

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestDefinition(t *testing.T) {
	r := NewRequestDefinition("post", "https://api.example.com")
	assert.Equal(t, "POST", r.Method)
	assert.Equal(t, "https://api.example.com", r.URL)
}

func TestRequestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     *RequestDefinition
		wantErr error
	}{
		{"valid", NewRequestDefinition("GET", "https://x.io"), nil},
		{"empty url", NewRequestDefinition("GET", "  "), ErrEmptyURL},
		{"bad method", NewRequestDefinition("FETCH", "https://x.io"), ErrUnsupportedMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("incomplete auth", func(t *testing.T) {
		def := NewRequestDefinition("GET", "https://x.io")
		def.Auth = AuthConfig{Type: AuthTypeBearer}
		assert.Error(t, def.Validate())
	})
}

func TestRequestDefinition_FullURL(t *testing.T) {
	def := NewRequestDefinition("GET", "https://x.io/items?sort=asc")
	def.Query = []KeyValue{
		{Key: "page", Value: "2", Enabled: true},
		{Key: "debug", Value: "1", Enabled: false},
		{Key: "", Value: "ignored", Enabled: true},
	}
	assert.Equal(t, "https://x.io/items?page=2&sort=asc", def.FullURL())

	plain := NewRequestDefinition("GET", "https://x.io")
	assert.Equal(t, "https://x.io", plain.FullURL())
}

func TestRequestDefinition_ToHTTPRequest(t *testing.T) {
	def := NewRequestDefinition("POST", "https://x.io/users")
	def.Headers = []KeyValue{
		{Key: "X-Trace", Value: "abc", Enabled: true},
		{Key: "X-Off", Value: "no", Enabled: false},
	}
	def.Body = Body{Type: BodyJSON, Content: `{"name":"ada"}`}
	def.Auth = NewBearerAuth("tok")

	req, err := def.ToHTTPRequest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "abc", req.Header.Get("X-Trace"))
	assert.Empty(t, req.Header.Get("X-Off"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"ada"}`, string(body))
}

func TestRequestDefinition_ToHTTPRequestInvalid(t *testing.T) {
	_, err := NewRequestDefinition("GET", "").ToHTTPRequest(context.Background())
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestRequestDefinition_Clone(t *testing.T) {
	def := NewRequestDefinition("GET", "https://x.io")
	def.Headers = []KeyValue{{Key: "A", Value: "1", Enabled: true}}

	clone := def.Clone()
	clone.Headers[0].Value = "2"
	clone.URL = "changed"

	assert.Equal(t, "1", def.Headers[0].Value)
	assert.Equal(t, "https://x.io", def.URL)
	assert.Nil(t, (*RequestDefinition)(nil).Clone())
}

func TestRequestDefinition_Header(t *testing.T) {
	def := NewRequestDefinition("GET", "https://x.io")
	def.Headers = []KeyValue{
		{Key: "Accept", Value: "text/html", Enabled: false},
		{Key: "accept", Value: "application/json", Enabled: true},
	}
	assert.Equal(t, "application/json", def.Header("ACCEPT"))
	assert.Empty(t, def.Header("X-Missing"))
}
