// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrMappingNotFound indicates that the requested mapping is not configured.
	// Recommended to map to HTTP 404 Not Found.
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrConversionFailed indicates that a converter tree failed on the supplied input,
	// or that post-processing of its result failed.
	// Recommended to map to HTTP 422 Unprocessable Entity.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrInvalidMapping indicates that a mapping definition could not be loaded, validated or compiled.
	// Recommended to map to HTTP 500 Internal Server Error, since definitions are server-side configuration.
	ErrInvalidMapping = errors.New("invalid mapping")
)
