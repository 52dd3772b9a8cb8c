package contracts

import (
	"context"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/converter"
)

var _ MappingCatalog = (*catalog.Catalog)(nil)

// MappingCatalog provides read access to compiled mappings and runs conversions against them.
type MappingCatalog interface {
	// Names returns the registered mapping names, sorted.
	Names() []string

	// Summaries returns a summary of every mapping, sorted by name.
	Summaries() []catalog.Summary

	// Describe returns the flattened structure of a mapping.
	Describe(name string) ([]converter.FieldInfo, error)

	// Convert runs a mapping against a single input.
	Convert(ctx context.Context, name string, input any) (any, error)

	// ConvertAll runs a mapping against every input, keeping their order.
	ConvertAll(ctx context.Context, name string, inputs []any) ([]any, error)
}
