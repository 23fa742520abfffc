package importer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/artpar/postbox/internal/exporter"
	"github.com/artpar/postbox/internal/workspace"
)

// YAMLImporter reads the collection documents written by the YAML exporter.
type YAMLImporter struct{}

func NewYAMLImporter() *YAMLImporter {
	return &YAMLImporter{}
}

func (y *YAMLImporter) Name() string {
	return "postbox YAML"
}

func (y *YAMLImporter) Format() Format {
	return FormatYAML
}

func (y *YAMLImporter) FileExtensions() []string {
	return []string{".yaml", ".yml"}
}

// DetectFormat looks for a top level name key followed by items, the shape
// every exported document has.
func (y *YAMLImporter) DetectFormat(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] == '{' || bytes.HasPrefix(trimmed, []byte("curl")) {
		return false
	}
	return bytes.Contains(content, []byte("\nname:")) || bytes.HasPrefix(trimmed, []byte("name:")) ||
		bytes.HasPrefix(trimmed, []byte("id:"))
}

func (y *YAMLImporter) Import(ctx context.Context, content []byte) (*workspace.Collection, error) {
	coll, err := exporter.ParseYAML(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	return coll, nil
}

var _ Importer = (*YAMLImporter)(nil)
