package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/convtree/internal/api"
	"github.com/mozilla-ai/convtree/internal/contracts"
	"github.com/mozilla-ai/convtree/internal/errors"
)

var errorHandlerOnce sync.Once

// APIServer serves the mapping catalog over HTTP.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// Catalog holds the mappings being served.
	catalog contracts.MappingCatalog

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration
}

// NewAPIServer creates a new API server with the provided dependencies and options.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	return &APIServer{
		logger:          deps.Logger.Named("api"),
		catalog:         deps.Catalog,
		addr:            deps.Addr,
		cors:            apiOpts.CORS,
		shutdownTimeout: apiOpts.ShutdownTimeout,
	}, nil
}

// Handler builds the HTTP handler serving the API, returning it with the path prefix of its routes.
func (a *APIServer) Handler() (http.Handler, string, error) {
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Recoverer)

	if a.cors.Enabled {
		a.applyCORS(mux)
	}

	config := huma.DefaultConfig("convtree API", api.APIVersion)
	router := humachi.New(mux, config)

	// huma's error constructor is process-wide, so the first server's logger is kept.
	errorHandlerOnce.Do(func() {
		huma.NewErrorWithContext = errorHandler(a.logger)
	})

	prefix, err := api.RegisterRoutes(router, a.catalog)
	if err != nil {
		return nil, "", err
	}

	return mux, prefix, nil
}

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.addr, err)
	}
	return a.Serve(ctx, lis)
}

// Serve serves the API on lis until the context is canceled or an error occurs.
func (a *APIServer) Serve(ctx context.Context, lis net.Listener) error {
	handler, prefix, err := a.Handler()
	if err != nil {
		_ = lis.Close()
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Starting API server", "address", lis.Addr().String(), "prefix", prefix)
		if err := srv.Serve(lis); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down API server...")
		_ = srv.Shutdown(shutdownCtx)
		a.logger.Info("Shutdown complete")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins:   make([]string, 0, len(a.cors.AllowOrigins)),
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	for _, origin := range a.cors.AllowOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins = append(corsOptions.AllowedOrigins, origin)
	}

	mux.Use(cors.Handler(corsOptions))
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// When adding new errors to internal/errors/errors.go, add them here too, otherwise they fall
// through to the default case which returns HTTP 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 404: Unknown mappings
//   - 422: Input the mapping could not convert
//   - 500: Unexpected internal errors (default case)
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrBadRequest):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrMappingNotFound):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrConversionFailed):
		logger.Debug("Conversion failed", "error", err)
		return huma.Error422UnprocessableEntity(err.Error())
	case stdErrors.Is(err, errors.ErrInvalidMapping):
		logger.Error("Invalid mapping", "error", err)
		return huma.Error500InternalServerError("Invalid mapping", err)
	default:
		logger.Error("Unexpected error", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// Domain errors are mapped by mapError; anything else, such as request validation details, keeps
// the status huma chose.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if len(errs) == 0 {
			return huma.NewError(status, msg)
		}

		err := stdErrors.Join(errs...)
		if !isDomainError(err) {
			if status >= http.StatusInternalServerError {
				logger.Error("Unexpected error", "error", err)
			}
			return huma.NewError(status, msg, errs...)
		}

		return mapError(logger, err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		errors.ErrBadRequest,
		errors.ErrMappingNotFound,
		errors.ErrConversionFailed,
		errors.ErrInvalidMapping,
	} {
		if stdErrors.Is(err, target) {
			return true
		}
	}
	return false
}
