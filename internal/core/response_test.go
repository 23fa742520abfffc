package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Status(t *testing.T) {
	ok := &Response{StatusCode: 204}
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsError())

	bad := &Response{StatusCode: 503}
	assert.False(t, bad.IsSuccess())
	assert.True(t, bad.IsError())
}

func TestResponse_JSON(t *testing.T) {
	labelled := &Response{Headers: http.Header{"Content-Type": {"application/json; charset=utf-8"}}, Body: []byte(`{"a":1}`)}
	assert.True(t, labelled.IsJSON())
	assert.Equal(t, "{\n  \"a\": 1\n}", labelled.PrettyBody())

	sniffed := &Response{Body: []byte(` [1,2] `)}
	assert.True(t, sniffed.IsJSON())

	text := &Response{Headers: http.Header{"Content-Type": {"text/plain"}}, Body: []byte("hello")}
	assert.False(t, text.IsJSON())
	assert.Equal(t, "hello", text.PrettyBody())
	assert.Equal(t, 5, text.Size())
}

func TestResponseState_Failed(t *testing.T) {
	assert.False(t, ResponseState{Response: &Response{StatusCode: 200}}.Failed())
	assert.True(t, ResponseState{Err: "dial tcp: refused"}.Failed())
}
