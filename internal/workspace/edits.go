package workspace

import (
	"fmt"
	"strings"

	"github.com/artpar/postbox/internal/core"
)

// RequestEdit is a typed change to a request definition. Edits are applied
// to a copy; a failing edit leaves the stored request unchanged.
type RequestEdit func(def *core.RequestDefinition) error

// SetMethod changes the HTTP method.
func SetMethod(method string) RequestEdit {
	return func(def *core.RequestDefinition) error {
		def.Method = strings.ToUpper(strings.TrimSpace(method))
		return nil
	}
}

// SetURL changes the request URL.
func SetURL(rawURL string) RequestEdit {
	return func(def *core.RequestDefinition) error {
		def.URL = strings.TrimSpace(rawURL)
		return nil
	}
}

// AddHeader appends an enabled header row.
func AddHeader(key, value string) RequestEdit {
	return func(def *core.RequestDefinition) error {
		def.Headers = append(def.Headers, core.KeyValue{Key: key, Value: value, Enabled: true})
		return nil
	}
}

// SetHeader replaces the header row at index.
func SetHeader(index int, kv core.KeyValue) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := checkRow("header", index, len(def.Headers)); err != nil {
			return err
		}
		def.Headers[index] = kv
		return nil
	}
}

// RemoveHeader deletes the header row at index.
func RemoveHeader(index int) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := checkRow("header", index, len(def.Headers)); err != nil {
			return err
		}
		def.Headers = append(def.Headers[:index], def.Headers[index+1:]...)
		return nil
	}
}

// ToggleHeader flips the enabled flag of the header row at index.
func ToggleHeader(index int) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := checkRow("header", index, len(def.Headers)); err != nil {
			return err
		}
		def.Headers[index].Enabled = !def.Headers[index].Enabled
		return nil
	}
}

// AddQueryParam appends an enabled query parameter row.
func AddQueryParam(key, value string) RequestEdit {
	return func(def *core.RequestDefinition) error {
		def.Query = append(def.Query, core.KeyValue{Key: key, Value: value, Enabled: true})
		return nil
	}
}

// SetQueryParam replaces the query parameter row at index.
func SetQueryParam(index int, kv core.KeyValue) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := checkRow("query parameter", index, len(def.Query)); err != nil {
			return err
		}
		def.Query[index] = kv
		return nil
	}
}

// RemoveQueryParam deletes the query parameter row at index.
func RemoveQueryParam(index int) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := checkRow("query parameter", index, len(def.Query)); err != nil {
			return err
		}
		def.Query = append(def.Query[:index], def.Query[index+1:]...)
		return nil
	}
}

// ToggleQueryParam flips the enabled flag of the query row at index.
func ToggleQueryParam(index int) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := checkRow("query parameter", index, len(def.Query)); err != nil {
			return err
		}
		def.Query[index].Enabled = !def.Query[index].Enabled
		return nil
	}
}

// SetBody replaces the body.
func SetBody(bodyType, content string) RequestEdit {
	return func(def *core.RequestDefinition) error {
		switch bodyType {
		case core.BodyNone, core.BodyJSON, core.BodyText, core.BodyForm:
		default:
			return fmt.Errorf("unsupported body type %q", bodyType)
		}
		def.Body = core.Body{Type: bodyType, Content: content}
		return nil
	}
}

// SetBasicAuth switches the request to basic auth.
func SetBasicAuth(username, password string) RequestEdit {
	return setAuth(core.NewBasicAuth(username, password))
}

// SetBearerAuth switches the request to a bearer token.
func SetBearerAuth(token string) RequestEdit {
	return setAuth(core.NewBearerAuth(token))
}

// SetAPIKeyAuth switches the request to an API key.
func SetAPIKeyAuth(key, value string, in core.APIKeyLocation) RequestEdit {
	return setAuth(core.NewAPIKeyAuth(key, value, in))
}

// ClearAuth removes authentication.
func ClearAuth() RequestEdit {
	return func(def *core.RequestDefinition) error {
		def.Auth = core.AuthConfig{}
		return nil
	}
}

// SetDocs replaces the markdown documentation.
func SetDocs(markdown string) RequestEdit {
	return func(def *core.RequestDefinition) error {
		def.Docs = markdown
		return nil
	}
}

func setAuth(auth core.AuthConfig) RequestEdit {
	return func(def *core.RequestDefinition) error {
		if err := auth.Validate(); err != nil {
			return err
		}
		def.Auth = auth
		return nil
	}
}

func checkRow(kind string, index, n int) error {
	if index < 0 || index >= n {
		return fmt.Errorf("%w: %s %d of %d", ErrIndexOutOfRange, kind, index, n)
	}
	return nil
}
