package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDocument = errors.New("invalid collection document")

// YAMLExporter writes a collection as a YAML document that ParseYAML reads
// back.
type YAMLExporter struct{}

func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

func (y *YAMLExporter) Format() Format {
	return FormatYAML
}

func (y *YAMLExporter) FileExtension() string {
	return ".yaml"
}

func (y *YAMLExporter) Export(ctx context.Context, coll *workspace.Collection) ([]byte, error) {
	return YAML(coll)
}

// YAML encodes coll.
func YAML(coll *workspace.Collection) ([]byte, error) {
	if coll == nil {
		return nil, ErrInvalidCollection
	}
	out, err := yaml.Marshal(coll)
	if err != nil {
		return nil, fmt.Errorf("marshal collection: %w", err)
	}
	return out, nil
}

// ParseYAML decodes a collection document. Missing ids are generated so a
// hand-written file needs only names, kinds and requests. Requests without
// a definition get an empty GET.
func ParseYAML(data []byte) (*workspace.Collection, error) {
	var coll workspace.Collection
	if err := yaml.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if coll.Name == "" {
		return nil, fmt.Errorf("%w: collection has no name", ErrInvalidDocument)
	}
	if coll.ID == "" {
		coll.ID = uuid.New().String()
	}

	seen := make(map[string]bool)
	var invalid error
	tree.Walk(coll.Items, func(n *tree.Node, depth int) bool {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if seen[n.ID] {
			invalid = fmt.Errorf("%w: %s", tree.ErrDuplicateID, n.ID)
			return false
		}
		seen[n.ID] = true

		switch n.Kind {
		case tree.KindFolder:
			// kind defaults to folder; an entry with a request and no
			// children is read as a request.
			if n.Request != nil && len(n.Children) == 0 {
				n.Kind = tree.KindRequest
			}
		case tree.KindRequest:
			if len(n.Children) > 0 {
				invalid = fmt.Errorf("%w: request %q has children", ErrInvalidDocument, n.Name)
				return false
			}
			if n.Request == nil {
				n.Request = core.NewRequestDefinition("GET", "")
			}
		}
		return true
	})
	if invalid != nil {
		return nil, invalid
	}
	return &coll, nil
}

var _ Exporter = (*YAMLExporter)(nil)
