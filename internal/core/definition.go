package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// Body types understood by RequestDefinition.
const (
	BodyNone = ""
	BodyJSON = "json"
	BodyText = "text"
	BodyForm = "form"
)

// Methods lists the HTTP methods a request definition may use.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
}

var (
	ErrEmptyURL          = errors.New("request URL is empty")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
)

// KeyValue is an editable header or query parameter row.
type KeyValue struct {
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value" yaml:"value"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Body is the request payload and how to label it.
type Body struct {
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// ContentType returns the MIME type implied by the body type.
func (b Body) ContentType() string {
	switch b.Type {
	case BodyJSON:
		return "application/json"
	case BodyForm:
		return "application/x-www-form-urlencoded"
	case BodyText:
		return "text/plain"
	}
	return ""
}

// RequestDefinition is a saved HTTP request.
type RequestDefinition struct {
	Method  string     `json:"method" yaml:"method"`
	URL     string     `json:"url" yaml:"url"`
	Headers []KeyValue `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query   []KeyValue `json:"query,omitempty" yaml:"query,omitempty"`
	Body    Body       `json:"body,omitempty" yaml:"body,omitempty"`
	Auth    AuthConfig `json:"auth,omitempty" yaml:"auth,omitempty"`
	Docs    string     `json:"docs,omitempty" yaml:"docs,omitempty"`
}

// NewRequestDefinition creates a request definition.
func NewRequestDefinition(method, rawURL string) *RequestDefinition {
	return &RequestDefinition{
		Method: strings.ToUpper(method),
		URL:    rawURL,
	}
}

// Clone returns a deep copy.
func (r *RequestDefinition) Clone() *RequestDefinition {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Headers = slices.Clone(r.Headers)
	clone.Query = slices.Clone(r.Query)
	return &clone
}

// Validate checks the method and URL.
func (r *RequestDefinition) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrEmptyURL
	}
	if !slices.Contains(Methods, r.Method) {
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, r.Method)
	}
	return r.Auth.Validate()
}

// Header returns the value of the first enabled header named key,
// compared case-insensitively.
func (r *RequestDefinition) Header(key string) string {
	for _, h := range r.Headers {
		if h.Enabled && strings.EqualFold(h.Key, key) {
			return h.Value
		}
	}
	return ""
}

// FullURL returns URL with enabled query parameters merged in.
func (r *RequestDefinition) FullURL() string {
	enabled := enabledRows(r.Query)
	if len(enabled) == 0 {
		return r.URL
	}
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	q := parsed.Query()
	for _, kv := range enabled {
		q.Add(kv.Key, kv.Value)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

// ToHTTPRequest builds the outgoing request, applying enabled headers,
// query parameters, body and auth.
func (r *RequestDefinition) ToHTTPRequest(ctx context.Context) (*http.Request, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Body.Content != "" && r.Body.Type != BodyNone {
		body = strings.NewReader(r.Body.Content)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.FullURL(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if ct := r.Body.ContentType(); ct != "" && body != nil {
		req.Header.Set("Content-Type", ct)
	}
	for _, h := range enabledRows(r.Headers) {
		req.Header.Add(h.Key, h.Value)
	}
	r.Auth.Apply(req)

	return req, nil
}

func enabledRows(rows []KeyValue) []KeyValue {
	var out []KeyValue
	for _, kv := range rows {
		if kv.Enabled && kv.Key != "" {
			out = append(out, kv)
		}
	}
	return out
}
