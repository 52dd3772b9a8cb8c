package daemon

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mozilla-ai/convtree/internal/config"
)

// APIOptions contains optional configuration for the API server.
// NewAPIOptions should be used to create instances of APIOptions.
type APIOptions struct {
	// CORS configuration for cross-origin requests.
	CORS CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// CORSConfig defines Cross-Origin Resource Sharing settings for the API server.
type CORSConfig struct {
	// Enabled determines whether CORS headers are added to responses.
	Enabled bool

	// AllowCredentials indicates whether the request can include credentials.
	// Must be false when AllowOrigins contains "*"
	AllowCredentials bool

	// AllowedHeaders specifies which headers the client can include in requests.
	AllowedHeaders []string

	// AllowMethods specifies which HTTP methods are permitted.
	AllowMethods []string

	// AllowOrigins specifies which origins can access the API.
	AllowOrigins []string

	// MaxAge specifies how long browsers can cache preflight responses.
	MaxAge time.Duration
}

// APIOption defines a functional option for configuring APIOptions.
// Options are applied in order, with later options overriding earlier ones.
type APIOption func(*APIOptions) error

// NewAPIOptions creates APIOptions with optional configurations applied.
func NewAPIOptions(opts ...APIOption) (APIOptions, error) {
	options := APIOptions{
		CORS: CORSConfig{
			AllowMethods:   DefaultCORSAllowMethods(),
			AllowedHeaders: DefaultCORSAllowHeaders(),
			MaxAge:         DefaultCORSMaxAge(),
		},
		ShutdownTimeout: config.DefaultShutdownTimeout,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return APIOptions{}, err
		}
	}

	return options, nil
}

// WithConfig applies the [api] section of the project configuration.
// Unset values keep their defaults. A nil section changes nothing.
func WithConfig(section *config.APISection) APIOption {
	return func(o *APIOptions) error {
		if section == nil {
			return nil
		}

		if err := WithShutdownTimeout(section.ShutdownTimeoutOrDefault())(o); err != nil {
			return err
		}

		cors := section.CORSOrNil()
		if cors == nil {
			return nil
		}

		o.CORS.Enabled = cors.EnableOrDefault(o.CORS.Enabled)
		if len(cors.Origins) > 0 {
			o.CORS.AllowOrigins = cors.Origins
		}
		if len(cors.Methods) > 0 {
			o.CORS.AllowMethods = cors.Methods
		}
		if len(cors.Headers) > 0 {
			o.CORS.AllowedHeaders = cors.Headers
		}
		if cors.MaxAge != nil {
			o.CORS.MaxAge = time.Duration(*cors.MaxAge)
		}
		return nil
	}
}

// WithCORSEnabled enables or disables CORS support.
func WithCORSEnabled(enabled bool) APIOption {
	return func(o *APIOptions) error {
		o.CORS.Enabled = enabled
		return nil
	}
}

// WithCORSAllowHeaders sets which additional request headers are safe for the client to send.
func WithCORSAllowHeaders(headers []string) APIOption {
	return func(o *APIOptions) error {
		o.CORS.AllowedHeaders = headers
		return nil
	}
}

// WithCORSAllowOrigins sets the allowed origins for CORS requests.
func WithCORSAllowOrigins(origins []string) APIOption {
	return func(o *APIOptions) error {
		o.CORS.AllowOrigins = origins
		return nil
	}
}

// WithCORSAllowMethods sets the allowed HTTP methods for CORS requests.
func WithCORSAllowMethods(methods []string) APIOption {
	return func(o *APIOptions) error {
		o.CORS.AllowMethods = methods
		return nil
	}
}

// WithCORSAllowCredentials sets whether credentials are allowed in CORS requests.
func WithCORSAllowCredentials(allowed bool) APIOption {
	return func(o *APIOptions) error {
		o.CORS.AllowCredentials = allowed
		return nil
	}
}

// WithCORSMaxAge sets how long browsers can cache CORS preflight responses.
func WithCORSMaxAge(maxAge time.Duration) APIOption {
	return func(o *APIOptions) error {
		o.CORS.MaxAge = maxAge
		return nil
	}
}

// WithShutdownTimeout configures how long to wait for graceful shutdown.
func WithShutdownTimeout(timeout time.Duration) APIOption {
	return func(o *APIOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive, got %v", timeout)
		}
		o.ShutdownTimeout = timeout
		return nil
	}
}

// DefaultCORSAllowHeaders returns standard headers required for API interaction.
func DefaultCORSAllowHeaders() []string {
	return []string{
		"Accept",
		"Accept-Language",
		"Content-Language",
		"Content-Type",
	}
}

// DefaultCORSAllowMethods returns the HTTP methods used by the API.
func DefaultCORSAllowMethods() []string {
	return []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodOptions,
	}
}

// DefaultCORSMaxAge returns the default time browsers can cache preflight responses.
func DefaultCORSMaxAge() time.Duration {
	return 5 * time.Minute
}

// validateAddr checks if the address is a valid "host:port" string.
func validateAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %w", err)
	}

	if port == "" {
		return fmt.Errorf("address missing port")
	}

	if _, err := strconv.Atoi(port); err != nil {
		if _, err := net.LookupPort("tcp", port); err != nil {
			return fmt.Errorf("invalid address port: %s", port)
		}
	}

	return nil
}
