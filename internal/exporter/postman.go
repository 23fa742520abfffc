package exporter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

const postmanSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// PostmanExporter writes a Postman v2.1 collection. Folders become item
// groups; disabled headers and query parameters are kept as disabled.
type PostmanExporter struct{}

func NewPostmanExporter() *PostmanExporter {
	return &PostmanExporter{}
}

func (p *PostmanExporter) Format() Format {
	return FormatPostman
}

func (p *PostmanExporter) FileExtension() string {
	return ".postman_collection.json"
}

func (p *PostmanExporter) Export(ctx context.Context, coll *workspace.Collection) ([]byte, error) {
	if coll == nil {
		return nil, ErrInvalidCollection
	}
	pm := postmanCollection{
		Info: postmanInfo{PostmanID: coll.ID, Name: coll.Name, Schema: postmanSchema},
		Item: p.items(coll.Items),
	}
	return json.MarshalIndent(pm, "", "  ")
}

func (p *PostmanExporter) items(nodes []*tree.Node) []postmanItem {
	out := make([]postmanItem, 0, len(nodes))
	for _, n := range nodes {
		if n.IsFolder() {
			out = append(out, postmanItem{Name: n.Name, Item: p.items(n.Children)})
			continue
		}
		out = append(out, postmanItem{Name: n.Name, Request: p.request(n.Request)})
	}
	return out
}

func (p *PostmanExporter) request(def *core.RequestDefinition) *postmanRequest {
	req := &postmanRequest{
		Method:      def.Method,
		Header:      make([]postmanKeyValue, 0, len(def.Headers)),
		URL:         postmanURL{Raw: def.FullURL()},
		Description: def.Docs,
	}
	for _, h := range def.Headers {
		req.Header = append(req.Header, postmanKeyValue{Key: h.Key, Value: h.Value, Disabled: !h.Enabled})
	}
	for _, q := range def.Query {
		req.URL.Query = append(req.URL.Query, postmanKeyValue{Key: q.Key, Value: q.Value, Disabled: !q.Enabled})
	}

	if def.Body.Type != core.BodyNone && def.Body.Content != "" {
		req.Body = &postmanBody{Mode: "raw", Raw: def.Body.Content}
		switch def.Body.Type {
		case core.BodyJSON:
			req.Body.Options = &postmanBodyOptions{Raw: postmanRawOptions{Language: "json"}}
		case core.BodyText:
			req.Body.Options = &postmanBodyOptions{Raw: postmanRawOptions{Language: "text"}}
		case core.BodyForm:
			req.Body = &postmanBody{Mode: "urlencoded", URLEncoded: formPairs(def.Body.Content)}
		}
	}

	req.Auth = postmanAuthFor(def.Auth)
	return req
}

func postmanAuthFor(auth core.AuthConfig) *postmanAuth {
	item := func(key, value string) postmanKeyValue {
		return postmanKeyValue{Key: key, Value: value, Type: "string"}
	}
	switch auth.Type {
	case core.AuthTypeBasic:
		return &postmanAuth{Type: "basic", Basic: []postmanKeyValue{
			item("username", auth.Username),
			item("password", auth.Password),
		}}
	case core.AuthTypeBearer:
		return &postmanAuth{Type: "bearer", Bearer: []postmanKeyValue{item("token", auth.Token)}}
	case core.AuthTypeAPIKey:
		in := auth.In
		if in == "" {
			in = core.APIKeyInHeader
		}
		return &postmanAuth{Type: "apikey", APIKey: []postmanKeyValue{
			item("key", auth.Key),
			item("value", auth.Value),
			item("in", string(in)),
		}}
	}
	return nil
}

// formPairs splits an urlencoded body into rows without decoding them.
func formPairs(content string) []postmanKeyValue {
	var out []postmanKeyValue
	for _, pair := range strings.Split(content, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		out = append(out, postmanKeyValue{Key: key, Value: value})
	}
	return out
}

type postmanCollection struct {
	Info postmanInfo   `json:"info"`
	Item []postmanItem `json:"item"`
}

type postmanInfo struct {
	PostmanID string `json:"_postman_id"`
	Name      string `json:"name"`
	Schema    string `json:"schema"`
}

type postmanItem struct {
	Name    string          `json:"name"`
	Item    []postmanItem   `json:"item,omitempty"`
	Request *postmanRequest `json:"request,omitempty"`
}

type postmanRequest struct {
	Method      string            `json:"method"`
	Header      []postmanKeyValue `json:"header"`
	Body        *postmanBody      `json:"body,omitempty"`
	URL         postmanURL        `json:"url"`
	Auth        *postmanAuth      `json:"auth,omitempty"`
	Description string            `json:"description,omitempty"`
}

type postmanURL struct {
	Raw   string            `json:"raw"`
	Query []postmanKeyValue `json:"query,omitempty"`
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
	Options    *postmanBodyOptions `json:"options,omitempty"`
	URLEncoded []postmanKeyValue   `json:"urlencoded,omitempty"`
}

type postmanBodyOptions struct {
	Raw postmanRawOptions `json:"raw"`
}

type postmanRawOptions struct {
	Language string `json:"language,omitempty"`
}

type postmanAuth struct {
	Type   string            `json:"type"`
	Bearer []postmanKeyValue `json:"bearer,omitempty"`
	Basic  []postmanKeyValue `json:"basic,omitempty"`
	APIKey []postmanKeyValue `json:"apikey,omitempty"`
}

var _ Exporter = (*PostmanExporter)(nil)
