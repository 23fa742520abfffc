package exporter

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

// Curl renders def as a single-line curl command. Only enabled headers and
// query parameters are included.
func Curl(def *core.RequestDefinition) string {
	return formatInlineCurl(curlArgs(def))
}

// CurlExporter writes a collection as a shell script of curl commands.
type CurlExporter struct {
	// Pretty splits each command over several lines.
	Pretty bool
}

// NewCurlExporter creates a curl exporter with pretty output.
func NewCurlExporter() *CurlExporter {
	return &CurlExporter{Pretty: true}
}

func (c *CurlExporter) Format() Format {
	return FormatCurl
}

func (c *CurlExporter) FileExtension() string {
	return ".sh"
}

func (c *CurlExporter) Export(ctx context.Context, coll *workspace.Collection) ([]byte, error) {
	if coll == nil {
		return nil, ErrInvalidCollection
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "#!/bin/sh\n# Collection: %s\n\n", coll.Name)

	tree.Walk(coll.Items, func(n *tree.Node, depth int) bool {
		if n.IsFolder() {
			fmt.Fprintf(&sb, "# %s %s\n\n", strings.Repeat("=", depth+1), n.Name)
			return true
		}
		fmt.Fprintf(&sb, "# %s\n", n.Name)
		sb.WriteString(c.command(n.Request))
		sb.WriteString("\n\n")
		return true
	})
	return []byte(sb.String()), nil
}

func (c *CurlExporter) command(def *core.RequestDefinition) string {
	if c.Pretty {
		return formatPrettyCurl(curlArgs(def))
	}
	return formatInlineCurl(curlArgs(def))
}

// curlArgs returns the argument vector; the URL is always last.
func curlArgs(def *core.RequestDefinition) []string {
	if def == nil {
		return []string{"curl"}
	}

	args := []string{"curl"}
	if def.Method != "" && def.Method != "GET" {
		args = append(args, "-X", def.Method)
	}

	hasContentType := false
	for _, h := range def.Headers {
		if !h.Enabled || h.Key == "" {
			continue
		}
		if strings.EqualFold(h.Key, "Content-Type") {
			hasContentType = true
		}
		args = append(args, "-H", h.Key+": "+h.Value)
	}

	switch def.Auth.Type {
	case core.AuthTypeBasic:
		args = append(args, "-u", def.Auth.Username+":"+def.Auth.Password)
	case core.AuthTypeBearer:
		args = append(args, "-H", "Authorization: Bearer "+def.Auth.Token)
	case core.AuthTypeAPIKey:
		if def.Auth.In != core.APIKeyInQuery {
			args = append(args, "-H", def.Auth.Key+": "+def.Auth.Value)
		}
	}

	if def.Body.Type != core.BodyNone && def.Body.Content != "" {
		if ct := def.Body.ContentType(); ct != "" && !hasContentType {
			args = append(args, "-H", "Content-Type: "+ct)
		}
		args = append(args, "--data-raw", def.Body.Content)
	}

	target := def.FullURL()
	if withKey, err := def.Auth.ApplyToURL(target); err == nil {
		target = withKey
	}
	return append(args, target)
}

func formatInlineCurl(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// formatPrettyCurl puts each flag with its value, and the URL, on its own
// continuation line.
func formatPrettyCurl(args []string) string {
	var sb strings.Builder
	sb.WriteString(args[0])
	last := len(args) - 1
	for i := 1; i <= last; i++ {
		sb.WriteString(" \\\n  ")
		sb.WriteString(shellQuote(args[i]))
		if i < last && strings.HasPrefix(args[i], "-") {
			i++
			sb.WriteString(" ")
			sb.WriteString(shellQuote(args[i]))
		}
	}
	return sb.String()
}

// shellQuote wraps s in single quotes when a POSIX shell would otherwise
// interpret any of its characters.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'$`\\!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

var _ Exporter = (*CurlExporter)(nil)
