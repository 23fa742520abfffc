package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

var whitespace = regexp.MustCompile(`\s+`)

// CurlImporter imports a single curl command as a one-request collection.
type CurlImporter struct{}

func NewCurlImporter() *CurlImporter {
	return &CurlImporter{}
}

func (c *CurlImporter) Name() string {
	return "curl command"
}

func (c *CurlImporter) Format() Format {
	return FormatCurl
}

func (c *CurlImporter) FileExtensions() []string {
	return []string{".sh", ".curl", ".txt"}
}

func (c *CurlImporter) DetectFormat(content []byte) bool {
	trimmed := strings.TrimSpace(string(content))
	return strings.HasPrefix(trimmed, "curl ") || strings.HasPrefix(trimmed, "curl\t")
}

func (c *CurlImporter) Import(ctx context.Context, content []byte) (*workspace.Collection, error) {
	name, def, err := ParseCurl(string(content))
	if err != nil {
		return nil, err
	}
	coll := workspace.NewCollection("Imported from curl")
	coll.Items = []*tree.Node{tree.NewRequest(name, def)}
	return coll, nil
}

// ParseCurl parses a curl command line into a request definition and a
// name derived from the URL path. Output and transport flags are ignored.
func ParseCurl(cmd string) (string, *core.RequestDefinition, error) {
	cmd = strings.ReplaceAll(cmd, "\\\r\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = whitespace.ReplaceAllString(strings.TrimSpace(cmd), " ")

	tokens := tokenize(cmd)
	if len(tokens) == 0 || tokens[0] != "curl" {
		return "", nil, fmt.Errorf("%w: not a curl command", ErrParseError)
	}

	p := &curlParser{def: core.NewRequestDefinition(http.MethodGet, "")}
	for i := 1; i < len(tokens); i++ {
		token := tokens[i]
		value := func() string {
			if i+1 < len(tokens) {
				i++
				return tokens[i]
			}
			return ""
		}

		switch token {
		case "-X", "--request":
			p.method = strings.ToUpper(value())
		case "-H", "--header":
			p.header(value())
		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			p.body = append(p.body, value())
		case "--data-urlencode":
			p.body = append(p.body, value())
			p.bodyType = core.BodyForm
		case "--json":
			p.body = append(p.body, value())
			p.bodyType = core.BodyJSON
		case "-u", "--user":
			user, pass, _ := strings.Cut(value(), ":")
			p.def.Auth = core.NewBasicAuth(user, pass)
		case "-A", "--user-agent":
			p.addHeader("User-Agent", value())
		case "-e", "--referer":
			p.addHeader("Referer", value())
		case "-b", "--cookie":
			p.addHeader("Cookie", value())
		case "--compressed":
			p.addHeader("Accept-Encoding", "gzip, deflate, br")
		case "-I", "--head":
			p.method = http.MethodHead
		case "-G", "--get":
			p.method = http.MethodGet
		case "--url":
			p.def.URL = value()
		case "-o", "--output", "--connect-timeout", "-m", "--max-time", "-w", "--write-out":
			value()
		default:
			if strings.HasPrefix(token, "-") {
				continue
			}
			if p.def.URL == "" {
				p.def.URL = token
			}
		}
	}

	if p.def.URL == "" {
		return "", nil, fmt.Errorf("%w: no URL found in curl command", ErrParseError)
	}
	p.finish()
	if err := p.def.Validate(); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	return nameFromURL(p.def.URL), p.def, nil
}

type curlParser struct {
	def         *core.RequestDefinition
	method      string
	body        []string
	bodyType    string
	contentType string
}

func (p *curlParser) header(raw string) {
	key, value, ok := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return
	}
	value = strings.TrimSpace(value)

	switch {
	case strings.EqualFold(key, "Content-Type"):
		p.contentType = value
	case strings.EqualFold(key, "Authorization") && strings.HasPrefix(strings.ToLower(value), "bearer "):
		p.def.Auth = core.NewBearerAuth(strings.TrimSpace(value[len("bearer "):]))
	default:
		p.addHeader(key, value)
	}
}

func (p *curlParser) addHeader(key, value string) {
	p.def.Headers = append(p.def.Headers, core.KeyValue{Key: key, Value: value, Enabled: true})
}

// finish settles method and body type. Data implies POST, and the body type
// follows an explicit Content-Type before falling back to curl's form default.
func (p *curlParser) finish() {
	content := strings.Join(p.body, "&")
	switch {
	case p.method != "":
		p.def.Method = p.method
	case len(p.body) > 0:
		p.def.Method = http.MethodPost
	}

	if len(p.body) == 0 {
		if p.contentType != "" {
			p.addHeader("Content-Type", p.contentType)
		}
		return
	}

	bodyType := p.bodyType
	if bodyType == "" {
		ct := strings.ToLower(p.contentType)
		switch {
		case ct == "":
			bodyType = core.BodyForm
		case strings.Contains(ct, "json"):
			bodyType = core.BodyJSON
		case strings.Contains(ct, "x-www-form-urlencoded"):
			bodyType = core.BodyForm
		default:
			bodyType = core.BodyText
			p.addHeader("Content-Type", p.contentType)
		}
	}
	p.def.Body = core.Body{Type: bodyType, Content: content}
}

// tokenize splits the command respecting quotes and backslash escapes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	var inQuote rune
	var escaped, started bool

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' && inQuote != '\'' {
			escaped = true
			started = true
			continue
		}
		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		}
		switch r {
		case '"', '\'':
			inQuote = r
			started = true
		case ' ', '\t':
			if started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// nameFromURL uses the last path segment, falling back to the host.
func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if u, err = url.Parse("http://" + raw); err != nil {
			return raw
		}
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if last := segments[len(segments)-1]; last != "" {
		return last
	}
	return u.Hostname()
}

var _ Importer = (*CurlImporter)(nil)
