package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/convtree/internal/contracts"
)

const HealthStatusOK HealthStatus = "ok"

// HealthStatus represents the current status of the API.
type HealthStatus string

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Body struct {
		Status   HealthStatus `doc:"Service status"                  example:"ok" json:"status"`
		Mappings int          `doc:"Number of mappings being served" example:"3"  json:"mappings"`
	}
}

// RegisterHealthRoutes sets up the health endpoint.
func RegisterHealthRoutes(routerAPI huma.API, cat contracts.MappingCatalog, path string) {
	huma.Register(
		routerAPI,
		huma.Operation{
			OperationID: "getHealth",
			Method:      http.MethodGet,
			Path:        path,
			Summary:     "Report service health",
			Tags:        []string{"Health"},
		},
		func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
			return handleHealth(cat)
		},
	)
}

func handleHealth(cat contracts.MappingCatalog) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = HealthStatusOK
	resp.Body.Mappings = len(cat.Names())
	return resp, nil
}
