package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

// PostmanImporter imports Postman collections (v2.0 and v2.1). Item groups
// become folders; collection level auth is inherited by requests without
// their own. Scripts and variables have no equivalent and are dropped.
type PostmanImporter struct{}

func NewPostmanImporter() *PostmanImporter {
	return &PostmanImporter{}
}

func (p *PostmanImporter) Name() string {
	return "Postman Collection"
}

func (p *PostmanImporter) Format() Format {
	return FormatPostman
}

func (p *PostmanImporter) FileExtensions() []string {
	return []string{".json", ".postman_collection.json"}
}

func (p *PostmanImporter) DetectFormat(content []byte) bool {
	var check struct {
		Info struct {
			Schema string `json:"schema"`
		} `json:"info"`
	}
	if err := json.Unmarshal(content, &check); err != nil {
		return false
	}
	return strings.Contains(check.Info.Schema, "schema.getpostman.com/json/collection")
}

func (p *PostmanImporter) Import(ctx context.Context, content []byte) (*workspace.Collection, error) {
	var pm postmanCollection
	if err := json.Unmarshal(content, &pm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	name := pm.Info.Name
	if name == "" {
		name = "Imported from Postman"
	}
	coll := workspace.NewCollection(name)
	coll.Items = p.items(pm.Item, convertPostmanAuth(pm.Auth))
	return coll, nil
}

func (p *PostmanImporter) items(items []postmanItem, inherited core.AuthConfig) []*tree.Node {
	nodes := make([]*tree.Node, 0, len(items))
	for _, item := range items {
		switch {
		case item.Request != nil:
			nodes = append(nodes, tree.NewRequest(item.Name, p.request(item, inherited)))
		default:
			folder := tree.NewFolder(item.Name)
			auth := inherited
			if item.Auth != nil {
				auth = convertPostmanAuth(item.Auth)
			}
			folder.Children = p.items(item.Item, auth)
			nodes = append(nodes, folder)
		}
	}
	return nodes
}

func (p *PostmanImporter) request(item postmanItem, inherited core.AuthConfig) *core.RequestDefinition {
	pm := item.Request
	method := strings.ToUpper(pm.Method)
	if method == "" {
		method = http.MethodGet
	}

	base, rawQuery, _ := strings.Cut(pm.URL.Raw, "?")
	def := core.NewRequestDefinition(method, base)
	def.Docs = pm.Description
	if def.Docs == "" {
		def.Docs = item.Description
	}

	if pm.URL.Query != nil {
		for _, q := range pm.URL.Query {
			def.Query = append(def.Query, core.KeyValue{Key: q.Key, Value: q.Value, Enabled: !q.Disabled})
		}
	} else if rawQuery != "" {
		for _, pair := range strings.Split(rawQuery, "&") {
			if key, value, _ := strings.Cut(pair, "="); key != "" {
				def.Query = append(def.Query, core.KeyValue{Key: key, Value: value, Enabled: true})
			}
		}
	}

	contentType := ""
	for _, h := range pm.Header {
		if strings.EqualFold(h.Key, "Content-Type") && !h.Disabled {
			contentType = h.Value
			continue
		}
		def.Headers = append(def.Headers, core.KeyValue{Key: h.Key, Value: h.Value, Enabled: !h.Disabled})
	}

	if pm.Body != nil {
		def.Body = convertPostmanBody(pm.Body, contentType)
	}
	if def.Body.Type == core.BodyNone && contentType != "" {
		def.Headers = append(def.Headers, core.KeyValue{Key: "Content-Type", Value: contentType, Enabled: true})
	}

	def.Auth = inherited
	if pm.Auth != nil {
		def.Auth = convertPostmanAuth(pm.Auth)
	}
	return def
}

func convertPostmanBody(b *postmanBody, contentType string) core.Body {
	switch b.Mode {
	case "raw":
		if b.Raw == "" {
			return core.Body{}
		}
		lang := ""
		if b.Options != nil {
			lang = b.Options.Raw.Language
		}
		if lang == "json" || strings.Contains(strings.ToLower(contentType), "json") {
			return core.Body{Type: core.BodyJSON, Content: b.Raw}
		}
		return core.Body{Type: core.BodyText, Content: b.Raw}
	case "urlencoded", "formdata":
		rows := b.URLEncoded
		if b.Mode == "formdata" {
			rows = b.FormData
		}
		var pairs []string
		for _, kv := range rows {
			if kv.Disabled || kv.Type == "file" {
				continue
			}
			pairs = append(pairs, kv.Key+"="+kv.Value)
		}
		if len(pairs) == 0 {
			return core.Body{}
		}
		return core.Body{Type: core.BodyForm, Content: strings.Join(pairs, "&")}
	case "graphql":
		if b.GraphQL == nil {
			return core.Body{}
		}
		body := map[string]any{"query": b.GraphQL.Query}
		if b.GraphQL.Variables != "" {
			var vars any
			if err := json.Unmarshal([]byte(b.GraphQL.Variables), &vars); err == nil {
				body["variables"] = vars
			}
		}
		data, err := json.Marshal(body)
		if err != nil {
			return core.Body{}
		}
		return core.Body{Type: core.BodyJSON, Content: string(data)}
	}
	return core.Body{}
}

// convertPostmanAuth maps the auth kinds postbox can send; anything else,
// such as oauth2 or "noauth", becomes no auth.
func convertPostmanAuth(auth *postmanAuth) core.AuthConfig {
	if auth == nil {
		return core.AuthConfig{}
	}
	get := func(items []postmanKeyValue, key string) string {
		for _, item := range items {
			if item.Key == key {
				return item.Value
			}
		}
		return ""
	}

	switch auth.Type {
	case "bearer":
		return core.NewBearerAuth(get(auth.Bearer, "token"))
	case "basic":
		return core.NewBasicAuth(get(auth.Basic, "username"), get(auth.Basic, "password"))
	case "apikey":
		in := core.APIKeyInHeader
		if get(auth.APIKey, "in") == string(core.APIKeyInQuery) {
			in = core.APIKeyInQuery
		}
		return core.NewAPIKeyAuth(get(auth.APIKey, "key"), get(auth.APIKey, "value"), in)
	}
	return core.AuthConfig{}
}

type postmanCollection struct {
	Info postmanInfo   `json:"info"`
	Item []postmanItem `json:"item"`
	Auth *postmanAuth  `json:"auth,omitempty"`
}

type postmanInfo struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
}

type postmanItem struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Item        []postmanItem   `json:"item,omitempty"`
	Request     *postmanRequest `json:"request,omitempty"`
	Auth        *postmanAuth    `json:"auth,omitempty"`
}

type postmanRequest struct {
	Method      string            `json:"method"`
	Header      []postmanKeyValue `json:"header,omitempty"`
	Body        *postmanBody      `json:"body,omitempty"`
	URL         postmanURL        `json:"url"`
	Auth        *postmanAuth      `json:"auth,omitempty"`
	Description string            `json:"description,omitempty"`
}

// postmanURL accepts both the string and the object form of "url".
type postmanURL struct {
	Raw   string
	Query []postmanKeyValue
}

func (u *postmanURL) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		u.Raw = raw
		return nil
	}
	var obj struct {
		Raw      string            `json:"raw"`
		Protocol string            `json:"protocol"`
		Host     []string          `json:"host"`
		Port     string            `json:"port"`
		Path     []string          `json:"path"`
		Query    []postmanKeyValue `json:"query"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	u.Raw = obj.Raw
	u.Query = obj.Query
	if u.Raw == "" {
		var b strings.Builder
		if obj.Protocol != "" {
			b.WriteString(obj.Protocol + "://")
		}
		b.WriteString(strings.Join(obj.Host, "."))
		if obj.Port != "" {
			b.WriteString(":" + obj.Port)
		}
		for _, seg := range obj.Path {
			b.WriteString("/" + seg)
		}
		u.Raw = b.String()
	}
	return nil
}

type postmanKeyValue struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type postmanBody struct {
	Mode       string              `json:"mode"`
	Raw        string              `json:"raw,omitempty"`
	URLEncoded []postmanKeyValue   `json:"urlencoded,omitempty"`
	FormData   []postmanKeyValue   `json:"formdata,omitempty"`
	GraphQL    *postmanGraphQL     `json:"graphql,omitempty"`
	Options    *postmanBodyOptions `json:"options,omitempty"`
}

type postmanGraphQL struct {
	Query     string `json:"query"`
	Variables string `json:"variables,omitempty"`
}

type postmanBodyOptions struct {
	Raw struct {
		Language string `json:"language,omitempty"`
	} `json:"raw"`
}

type postmanAuth struct {
	Type   string            `json:"type"`
	Bearer []postmanKeyValue `json:"bearer,omitempty"`
	Basic  []postmanKeyValue `json:"basic,omitempty"`
	APIKey []postmanKeyValue `json:"apikey,omitempty"`
}

var _ Importer = (*PostmanImporter)(nil)
