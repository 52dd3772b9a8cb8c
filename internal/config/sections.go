package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"
)

const (
	DefaultOutputFormat    = "json"
	DefaultOutputIndent    = 2
	DefaultAPIAddr         = "0.0.0.0:8090"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultConcurrency     = 8
)

// OutputFormats lists the formats results can be rendered in.
var OutputFormats = []string{"json", "yaml", "toml", "xml"}

// APISection contains API server configuration settings.
//
// NOTE: if you add/remove fields you must review the associated accessors and Validate implementation.
type APISection struct {
	// Address to bind the API server (e.g., "0.0.0.0:8090")
	// Maps to CLI flag --addr
	Addr *string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`

	// Shutdown timeout for graceful API server shutdown
	ShutdownTimeout *Duration `json:"shutdownTimeout,omitempty" toml:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`

	// Concurrency limits how many inputs of a batch are converted at once.
	Concurrency *int `json:"concurrency,omitempty" toml:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// Nested CORS configuration for cross-origin requests
	CORS *CORSSection `json:"cors,omitempty" toml:"cors,omitempty" yaml:"cors,omitempty"`
}

// CORSSection contains Cross-Origin Resource Sharing (CORS) configuration.
type CORSSection struct {
	// Enable CORS support
	Enable *bool `json:"enable,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Allowed origins for CORS requests
	Origins []string `json:"allowOrigins,omitempty" toml:"allow_origins,omitempty" yaml:"allow_origins,omitempty"`

	// Allowed HTTP methods for CORS requests
	Methods []string `json:"allowMethods,omitempty" toml:"allow_methods,omitempty" yaml:"allow_methods,omitempty"`

	// Allowed headers for CORS requests
	Headers []string `json:"allowHeaders,omitempty" toml:"allow_headers,omitempty" yaml:"allow_headers,omitempty"`

	// Maximum age for CORS preflight cache
	MaxAge *Duration `json:"maxAge,omitempty" toml:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// Duration is a custom time.Duration type that provides improved marshaling.
type Duration time.Duration

// Validate checks the output section values.
func (o *OutputSection) Validate() error {
	if o == nil {
		return nil
	}

	var validationErrors []error

	if o.Format != nil && !slices.Contains(OutputFormats, *o.Format) {
		validationErrors = append(validationErrors, NewErrInvalidValue("output.format", *o.Format))
	}
	if o.Indent != nil && (*o.Indent < 0 || *o.Indent > 8) {
		validationErrors = append(validationErrors, NewErrInvalidValue("output.indent", fmt.Sprint(*o.Indent)))
	}

	return errors.Join(validationErrors...)
}

// FormatOrDefault returns the configured format, or DefaultOutputFormat.
func (o *OutputSection) FormatOrDefault() string {
	if o == nil || o.Format == nil {
		return DefaultOutputFormat
	}
	return *o.Format
}

// IndentOrDefault returns the configured indent, or DefaultOutputIndent.
func (o *OutputSection) IndentOrDefault() int {
	if o == nil || o.Indent == nil {
		return DefaultOutputIndent
	}
	return *o.Indent
}

// Validate checks the API section values.
func (a *APISection) Validate() error {
	if a == nil {
		return nil
	}

	var validationErrors []error

	// Validate address.
	if a.Addr != nil {
		if *a.Addr == "" {
			validationErrors = append(validationErrors, fmt.Errorf("API address cannot be empty"))
		} else if !isValidAddr(*a.Addr) {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("API address \"%s\" appears to be invalid (expected format: host:port)", *a.Addr),
			)
		}
	}

	if a.ShutdownTimeout != nil && *a.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, fmt.Errorf("API shutdown timeout must be positive"))
	}

	if a.Concurrency != nil && *a.Concurrency <= 0 {
		validationErrors = append(validationErrors, fmt.Errorf("API concurrency must be positive"))
	}

	if a.CORS != nil {
		if err := a.CORS.Validate(); err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("CORS configuration error: %w", err))
		}
	}

	return errors.Join(validationErrors...)
}

// AddrOrDefault returns the configured address, or DefaultAPIAddr.
func (a *APISection) AddrOrDefault() string {
	if a == nil || a.Addr == nil {
		return DefaultAPIAddr
	}
	return *a.Addr
}

// ShutdownTimeoutOrDefault returns the configured shutdown timeout, or DefaultShutdownTimeout.
func (a *APISection) ShutdownTimeoutOrDefault() time.Duration {
	if a == nil || a.ShutdownTimeout == nil {
		return DefaultShutdownTimeout
	}
	return time.Duration(*a.ShutdownTimeout)
}

// ConcurrencyOrDefault returns the configured batch concurrency, or DefaultConcurrency.
func (a *APISection) ConcurrencyOrDefault() int {
	if a == nil || a.Concurrency == nil {
		return DefaultConcurrency
	}
	return *a.Concurrency
}

// CORSOrNil returns the [api.cors] section, or nil when the [api] section is absent.
func (a *APISection) CORSOrNil() *CORSSection {
	if a == nil {
		return nil
	}
	return a.CORS
}

// EnableOrDefault returns whether CORS is enabled, falling back to defaultEnable when unset.
func (c *CORSSection) EnableOrDefault(defaultEnable bool) bool {
	if c == nil || c.Enable == nil {
		return defaultEnable
	}
	return *c.Enable
}

// Validate checks the CORS configuration values.
func (c *CORSSection) Validate() error {
	var validationErrors []error

	for _, origin := range c.Origins {
		// Wildcard origin check.
		// See: https://developer.mozilla.org/en-US/docs/Web/HTTP/Reference/Headers/Access-Control-Allow-Origin#sect
		if origin == "*" {
			continue
		}

		if origin == "" {
			validationErrors = append(validationErrors, fmt.Errorf("CORS origin cannot be empty"))
			continue
		}

		if !isValidOrigin(origin) {
			validationErrors = append(validationErrors, fmt.Errorf("invalid origin address: %s", origin))
		}
	}

	validMethods := ValidHTTPRequestMethods()
	for _, method := range c.Methods {
		if method == "*" {
			continue
		}

		if _, ok := validMethods[strings.ToUpper(method)]; !ok {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("CORS method '%s' is not a valid HTTP request method", method),
			)
		}
	}

	if c.MaxAge != nil && *c.MaxAge <= 0 {
		validationErrors = append(validationErrors, fmt.Errorf("CORS max age must be positive"))
	}

	return errors.Join(validationErrors...)
}

// ValidHTTPRequestMethods returns the set of HTTP request methods accepted in CORS configuration.
func ValidHTTPRequestMethods() map[string]struct{} {
	return map[string]struct{}{
		http.MethodGet:     {},
		http.MethodHead:    {},
		http.MethodPost:    {},
		http.MethodPut:     {},
		http.MethodDelete:  {},
		http.MethodConnect: {},
		http.MethodOptions: {},
		http.MethodTrace:   {},
		http.MethodPatch:   {},
	}
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String returns a human-readable string representation of the duration.
func (d Duration) String() string {
	duration := time.Duration(d)

	// List of duration units in descending order.
	units := []struct {
		unit   time.Duration
		suffix string
	}{
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
		{time.Microsecond, "µs"},
		{time.Nanosecond, "ns"},
	}

	for _, u := range units {
		if duration%u.unit == 0 {
			return fmt.Sprintf("%d%s", duration/u.unit, u.suffix)
		}
	}

	return fmt.Sprintf("%dns", duration)
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

func isValidAddr(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}

	// ":" binds all interfaces on a random port.
	if host == "" && port == "" {
		return true
	}

	if port == "" {
		return false
	}

	if host != "" {
		if strings.ContainsAny(host, " \t\n\r") {
			return false
		}
		if net.ParseIP(host) == nil && len(host) > 253 {
			return false
		}
	}

	return true
}

// isValidOrigin accepts scheme://host[:port] origins.
func isValidOrigin(origin string) bool {
	scheme, rest, ok := strings.Cut(origin, "://")
	if !ok || (scheme != "http" && scheme != "https") || rest == "" {
		return false
	}
	return !strings.ContainsAny(rest, " \t\n\r/")
}
