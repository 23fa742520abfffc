package importer

import (
	"context"
	"errors"
	"slices"

	"github.com/artpar/postbox/internal/tree"
	"github.com/artpar/postbox/internal/workspace"
)

var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrParseError    = errors.New("parse error")
)

// Format represents a supported import format.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatPostman Format = "postman"
	FormatCurl    Format = "curl"
	FormatYAML    Format = "yaml"
)

// Importer turns an external document into a collection.
type Importer interface {
	Name() string
	Format() Format
	FileExtensions() []string

	// DetectFormat reports whether content looks like this importer's format.
	DetectFormat(content []byte) bool

	Import(ctx context.Context, content []byte) (*workspace.Collection, error)
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Collection   *workspace.Collection
	RequestCount int
	FolderCount  int
	SourceFormat Format
}

// Registry holds all registered importers.
type Registry struct {
	importers map[Format]Importer
	order     []Format
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{importers: make(map[Format]Importer)}
}

// NewDefaultRegistry creates a registry with every built-in importer.
// Detection tries them in registration order.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPostmanImporter())
	r.Register(NewCurlImporter())
	r.Register(NewYAMLImporter())
	return r
}

// Register adds an importer, replacing any with the same format.
func (r *Registry) Register(imp Importer) {
	if _, ok := r.importers[imp.Format()]; !ok {
		r.order = append(r.order, imp.Format())
	}
	r.importers[imp.Format()] = imp
}

// Get returns an importer by format.
func (r *Registry) Get(format Format) (Importer, bool) {
	imp, ok := r.importers[format]
	return imp, ok
}

// DetectAndImport imports content with the first importer that recognises it.
func (r *Registry) DetectAndImport(ctx context.Context, content []byte) (*ImportResult, error) {
	for _, f := range r.order {
		imp := r.importers[f]
		if imp.DetectFormat(content) {
			return r.run(ctx, imp, content)
		}
	}
	return nil, ErrInvalidFormat
}

// Import imports content using the given format, or detection for FormatAuto.
func (r *Registry) Import(ctx context.Context, format Format, content []byte) (*ImportResult, error) {
	if format == FormatAuto || format == "" {
		return r.DetectAndImport(ctx, content)
	}
	imp, ok := r.importers[format]
	if !ok {
		return nil, ErrInvalidFormat
	}
	return r.run(ctx, imp, content)
}

func (r *Registry) run(ctx context.Context, imp Importer, content []byte) (*ImportResult, error) {
	coll, err := imp.Import(ctx, content)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{Collection: coll, SourceFormat: imp.Format()}
	tree.Walk(coll.Items, func(n *tree.Node, _ int) bool {
		if n.IsFolder() {
			result.FolderCount++
		} else {
			result.RequestCount++
		}
		return true
	})
	return result, nil
}

// ListFormats returns the registered formats, sorted.
func (r *Registry) ListFormats() []Format {
	formats := slices.Clone(r.order)
	slices.Sort(formats)
	return formats
}
