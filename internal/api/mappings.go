package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/contracts"
	"github.com/mozilla-ai/convtree/internal/converter"
	"github.com/mozilla-ai/convtree/internal/errors"
	"github.com/mozilla-ai/convtree/internal/filter"
)

// MappingsResponse represents the wrapped API response for a list of mappings.
type MappingsResponse struct {
	Body struct {
		Mappings []catalog.Summary `doc:"Configured mappings, sorted by name" json:"mappings"`
	}
}

// MappingFieldsRequest represents the incoming API request for the structure of a mapping.
type MappingFieldsRequest struct {
	Name   string `doc:"Name of the mapping"                               example:"people" path:"name"`
	Kind   string `doc:"Only nodes of this kind"                           example:"fanout" query:"kind"`
	Field  string `doc:"Only nodes whose internal or external name match"                   query:"field"`
	Path   string `doc:"Only nodes whose path contains this value"                          query:"path"`
	Public string `doc:"Only public (true) or private (false) nodes"                        query:"public"`
}

// MappingFieldsResponse represents the wrapped API response for the structure of a mapping.
type MappingFieldsResponse struct {
	Body struct {
		Fields []converter.FieldInfo `doc:"Nodes of the converter tree, parents before children" json:"fields"`
	}
}

// ConvertRequest represents the incoming API request to run a mapping.
// Exactly one of Input and Inputs must be set.
type ConvertRequest struct {
	Name string `doc:"Name of the mapping" example:"people" path:"name"`
	Body struct {
		Input  any   `doc:"A single source object"               json:"input,omitempty"`
		Inputs []any `doc:"Source objects, converted as a batch" json:"inputs,omitempty"`
	}
}

// ConvertResponse represents the wrapped API response of a conversion.
type ConvertResponse struct {
	Body struct {
		Result  any   `doc:"Converted document, for a single input" json:"result,omitempty"`
		Results []any `doc:"Converted documents, in input order"    json:"results,omitempty"`
	}
}

// RegisterMappingRoutes sets up mapping-related API endpoints.
func RegisterMappingRoutes(routerAPI huma.API, cat contracts.MappingCatalog, apiPathPrefix string) {
	mappingsAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Mappings"}

	huma.Register(
		mappingsAPI,
		huma.Operation{
			OperationID: "listMappings",
			Method:      http.MethodGet,
			Summary:     "List all mappings",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*MappingsResponse, error) {
			return handleMappings(cat)
		},
	)

	huma.Register(
		mappingsAPI,
		huma.Operation{
			OperationID: "describeMapping",
			Method:      http.MethodGet,
			Path:        "/{name}/fields",
			Summary:     "Describe the structure of a mapping",
			Tags:        tags,
		},
		func(ctx context.Context, input *MappingFieldsRequest) (*MappingFieldsResponse, error) {
			resp, err := handleMappingFields(cat, input)
			return resp, statusError(err)
		},
	)

	huma.Register(
		mappingsAPI,
		huma.Operation{
			OperationID: "convert",
			Method:      http.MethodPost,
			Path:        "/{name}/convert",
			Summary:     "Convert one or more source objects",
			Tags:        append(tags, "Convert"),
		},
		func(ctx context.Context, input *ConvertRequest) (*ConvertResponse, error) {
			resp, err := handleConvert(ctx, cat, input)
			return resp, statusError(err)
		},
	)
}

func handleMappings(cat contracts.MappingCatalog) (*MappingsResponse, error) {
	resp := &MappingsResponse{}
	resp.Body.Mappings = cat.Summaries()
	return resp, nil
}

func handleMappingFields(cat contracts.MappingCatalog, input *MappingFieldsRequest) (*MappingFieldsResponse, error) {
	infos, err := cat.Describe(input.Name)
	if err != nil {
		return nil, err
	}

	filters := make(map[string]string)
	for key, val := range map[string]string{
		filter.KeyKind:   input.Kind,
		filter.KeyName:   input.Field,
		filter.KeyPath:   input.Path,
		filter.KeyPublic: input.Public,
	} {
		if val != "" {
			filters[key] = val
		}
	}

	infos, err = filter.Fields(infos, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrBadRequest, err)
	}

	resp := &MappingFieldsResponse{}
	resp.Body.Fields = infos
	return resp, nil
}

func handleConvert(ctx context.Context, cat contracts.MappingCatalog, input *ConvertRequest) (*ConvertResponse, error) {
	single := input.Body.Input != nil
	batch := input.Body.Inputs != nil

	if single == batch {
		return nil, fmt.Errorf("%w: exactly one of 'input' or 'inputs' must be provided", errors.ErrBadRequest)
	}

	resp := &ConvertResponse{}

	if single {
		out, err := cat.Convert(ctx, input.Name, input.Body.Input)
		if err != nil {
			return nil, err
		}
		resp.Body.Result = out
		return resp, nil
	}

	out, err := cat.ConvertAll(ctx, input.Name, input.Body.Inputs)
	if err != nil {
		return nil, err
	}
	resp.Body.Results = out

	return resp, nil
}
