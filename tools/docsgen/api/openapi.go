//go:build docsgen_api
// +build docsgen_api

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/convtree/internal/api"
	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/perms"
)

// main generates the OpenAPI specification for the convtree API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "convtree.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	outputPath := "./docs/api/openapi.yaml"

	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	config := huma.DefaultConfig("convtree API", api.APIVersion)
	router := humachi.New(mux, config)

	// Only route definitions are rendered; the catalog stays empty.
	cat, err := catalog.New(catalog.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create catalog", "error", err)
		os.Exit(1)
	}

	apiPathPrefix, err := api.RegisterRoutes(router, cat)
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "prefix", apiPathPrefix)

	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	docsDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(docsDir, perms.RegularDir); err != nil {
		logger.Error("failed to create docs directory", "path", docsDir, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, yamlBytes, perms.RegularFile); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
