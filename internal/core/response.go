package core

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Response is the result of sending a request.
type Response struct {
	StatusCode int           `json:"statusCode"`
	Status     string        `json:"status"`
	Headers    http.Header   `json:"headers,omitempty"`
	Body       []byte        `json:"body,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError reports a 4xx or 5xx status.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Size returns the body size in bytes.
func (r *Response) Size() int {
	return len(r.Body)
}

// ContentType returns the Content-Type header.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// IsJSON reports whether the body is labelled or shaped as JSON.
func (r *Response) IsJSON() bool {
	if strings.Contains(r.ContentType(), "json") {
		return true
	}
	trimmed := bytes.TrimSpace(r.Body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed)
}

// PrettyBody returns the body indented when it is JSON, or as-is otherwise.
func (r *Response) PrettyBody() string {
	if r.IsJSON() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, r.Body, "", "  "); err == nil {
			return buf.String()
		}
	}
	return string(r.Body)
}

// ResponseState is the last outcome of sending a request: a response, an
// error message, or both when a retry failed after an earlier success.
type ResponseState struct {
	Response *Response `json:"response,omitempty"`
	Err      string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// Failed reports whether the last send ended in an error.
func (s ResponseState) Failed() bool {
	return s.Err != ""
}
