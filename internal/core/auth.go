package core

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
)

// AuthType represents the type of authentication.
type AuthType string

const (
	AuthTypeNone   AuthType = ""
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "apikey"
)

// AuthTypeNames returns display names for auth types.
var AuthTypeNames = map[AuthType]string{
	AuthTypeNone:   "No Auth",
	AuthTypeBasic:  "Basic Auth",
	AuthTypeBearer: "Bearer Token",
	AuthTypeAPIKey: "API Key",
}

// APIKeyLocation specifies where to add the API key.
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// AuthConfig holds authentication configuration for a request.
type AuthConfig struct {
	Type     AuthType       `json:"type,omitempty" yaml:"type,omitempty"`
	Username string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password string         `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string         `json:"token,omitempty" yaml:"token,omitempty"`
	Key      string         `json:"key,omitempty" yaml:"key,omitempty"`
	Value    string         `json:"value,omitempty" yaml:"value,omitempty"`
	In       APIKeyLocation `json:"in,omitempty" yaml:"in,omitempty"`
}

// NewBasicAuth creates a basic auth configuration.
func NewBasicAuth(username, password string) AuthConfig {
	return AuthConfig{Type: AuthTypeBasic, Username: username, Password: password}
}

// NewBearerAuth creates a bearer token configuration.
func NewBearerAuth(token string) AuthConfig {
	return AuthConfig{Type: AuthTypeBearer, Token: token}
}

// NewAPIKeyAuth creates an API key configuration.
func NewAPIKeyAuth(key, value string, in APIKeyLocation) AuthConfig {
	return AuthConfig{Type: AuthTypeAPIKey, Key: key, Value: value, In: in}
}

// IsConfigured returns true if authentication is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.Type != AuthTypeNone
}

// Validate checks if the auth configuration is complete.
func (a AuthConfig) Validate() error {
	switch a.Type {
	case AuthTypeNone:
		return nil
	case AuthTypeBasic:
		if a.Username == "" {
			return fmt.Errorf("basic auth requires username")
		}
	case AuthTypeBearer:
		if a.Token == "" {
			return fmt.Errorf("bearer auth requires token")
		}
	case AuthTypeAPIKey:
		if a.Key == "" {
			return fmt.Errorf("API key auth requires key name")
		}
		if a.In != "" && a.In != APIKeyInHeader && a.In != APIKeyInQuery {
			return fmt.Errorf("API key location must be header or query, got %q", a.In)
		}
	default:
		return fmt.Errorf("unsupported auth type %q", a.Type)
	}
	return nil
}

// Apply adds the credentials to the request headers or its query string.
func (a AuthConfig) Apply(req *http.Request) {
	switch a.Type {
	case AuthTypeBasic:
		credentials := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		req.Header.Set("Authorization", "Basic "+credentials)
	case AuthTypeBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthTypeAPIKey:
		if a.In == APIKeyInQuery {
			q := req.URL.Query()
			q.Set(a.Key, a.Value)
			req.URL.RawQuery = q.Encode()
		} else {
			req.Header.Set(a.Key, a.Value)
		}
	}
}

// ApplyToURL adds API key query parameters to rawURL. Other auth types
// leave the URL unchanged.
func (a AuthConfig) ApplyToURL(rawURL string) (string, error) {
	if a.Type != AuthTypeAPIKey || a.In != APIKeyInQuery {
		return rawURL, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, err
	}
	q := parsed.Query()
	q.Set(a.Key, a.Value)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// DisplayName returns a human-readable name for the auth type.
func (a AuthConfig) DisplayName() string {
	if name, ok := AuthTypeNames[a.Type]; ok {
		return name
	}
	return string(a.Type)
}

// Summary returns a short description with secrets masked.
func (a AuthConfig) Summary() string {
	switch a.Type {
	case AuthTypeBasic:
		return fmt.Sprintf("Basic (%s)", a.Username)
	case AuthTypeBearer:
		return "Bearer " + mask(a.Token)
	case AuthTypeAPIKey:
		in := a.In
		if in == "" {
			in = APIKeyInHeader
		}
		return fmt.Sprintf("API Key %s in %s", a.Key, in)
	}
	return a.DisplayName()
}

func mask(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
