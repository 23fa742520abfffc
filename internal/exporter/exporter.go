package exporter

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/artpar/postbox/internal/workspace"
)

var (
	ErrInvalidCollection = errors.New("invalid collection")
	ErrUnknownFormat     = errors.New("unknown export format")
)

// Format represents a supported export format.
type Format string

const (
	FormatCurl    Format = "curl"
	FormatYAML    Format = "yaml"
	FormatPostman Format = "postman"
)

// Exporter converts a collection to an external format.
type Exporter interface {
	Format() Format
	FileExtension() string
	Export(ctx context.Context, coll *workspace.Collection) ([]byte, error)
}

// ExportResult contains the result of an export operation.
type ExportResult struct {
	Content       []byte
	Format        Format
	FileExtension string
}

// Registry holds the available exporters by format.
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry creates a registry with every built-in exporter.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[Format]Exporter)}
	r.Register(NewCurlExporter())
	r.Register(NewYAMLExporter())
	r.Register(NewPostmanExporter())
	return r
}

// Register adds an exporter, replacing any with the same format.
func (r *Registry) Register(exp Exporter) {
	r.exporters[exp.Format()] = exp
}

// Get returns an exporter by format.
func (r *Registry) Get(format Format) (Exporter, bool) {
	exp, ok := r.exporters[format]
	return exp, ok
}

// Export exports the collection using the specified format.
func (r *Registry) Export(ctx context.Context, format Format, coll *workspace.Collection) (*ExportResult, error) {
	exp, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if coll == nil {
		return nil, ErrInvalidCollection
	}

	content, err := exp.Export(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	return &ExportResult{
		Content:       content,
		Format:        format,
		FileExtension: exp.FileExtension(),
	}, nil
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
