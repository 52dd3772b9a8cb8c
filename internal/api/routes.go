package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mozilla-ai/convtree/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// RegisterRoutes registers all API routes on the provided Huma router.
// Returns the API path prefix (e.g., "/api/v1") under which the routes are created.
func RegisterRoutes(router huma.API, cat contracts.MappingCatalog) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if cat == nil || reflect.ValueOf(cat).IsNil() {
		return "", fmt.Errorf("catalog cannot be nil")
	}

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", router.OpenAPI().Info.Version)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterHealthRoutes(versionedGroup, cat, "/health")
	RegisterMappingRoutes(versionedGroup, cat, "/mappings")

	return apiPathPrefix, nil
}
