package daemon

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/config"
)

func TestNewAPIOptions(t *testing.T) {
	t.Parallel()

	t.Run("default options", func(t *testing.T) {
		t.Parallel()

		opts, err := NewAPIOptions()
		require.NoError(t, err)
		require.Equal(t, config.DefaultShutdownTimeout, opts.ShutdownTimeout)
		require.False(t, opts.CORS.Enabled)
		require.Equal(t, DefaultCORSAllowMethods(), opts.CORS.AllowMethods)
		require.Equal(t, DefaultCORSAllowHeaders(), opts.CORS.AllowedHeaders)
		require.Equal(t, 5*time.Minute, opts.CORS.MaxAge)
	})

	t.Run("options override in order", func(t *testing.T) {
		t.Parallel()

		opts, err := NewAPIOptions(
			WithShutdownTimeout(5*time.Second),
			nil,
			WithShutdownTimeout(10*time.Second),
			WithCORSEnabled(true),
			WithCORSAllowOrigins([]string{"http://localhost:3000"}),
			WithCORSAllowMethods([]string{http.MethodGet}),
			WithCORSAllowHeaders([]string{"Content-Type"}),
			WithCORSAllowCredentials(true),
			WithCORSMaxAge(time.Hour),
		)
		require.NoError(t, err)
		require.Equal(t, 10*time.Second, opts.ShutdownTimeout)
		require.Equal(t, CORSConfig{
			Enabled:          true,
			AllowCredentials: true,
			AllowedHeaders:   []string{"Content-Type"},
			AllowMethods:     []string{http.MethodGet},
			AllowOrigins:     []string{"http://localhost:3000"},
			MaxAge:           time.Hour,
		}, opts.CORS)
	})
}

func TestAPIOptions_WithShutdownTimeout(t *testing.T) {
	t.Parallel()

	_, err := NewAPIOptions(WithShutdownTimeout(0))
	require.EqualError(t, err, "shutdown timeout must be positive, got 0s")

	_, err = NewAPIOptions(WithShutdownTimeout(-1 * time.Second))
	require.EqualError(t, err, "shutdown timeout must be positive, got -1s")
}

func TestAPIOptions_WithConfig(t *testing.T) {
	t.Parallel()

	enabled := true
	timeout := config.Duration(2 * time.Second)
	maxAge := config.Duration(time.Minute)

	tests := []struct {
		name    string
		section *config.APISection
		check   func(t *testing.T, opts APIOptions)
	}{
		{
			name:    "nil section keeps defaults",
			section: nil,
			check: func(t *testing.T, opts APIOptions) {
				require.Equal(t, config.DefaultShutdownTimeout, opts.ShutdownTimeout)
				require.False(t, opts.CORS.Enabled)
			},
		},
		{
			name:    "timeout without cors",
			section: &config.APISection{ShutdownTimeout: &timeout},
			check: func(t *testing.T, opts APIOptions) {
				require.Equal(t, 2*time.Second, opts.ShutdownTimeout)
				require.False(t, opts.CORS.Enabled)
			},
		},
		{
			name: "cors section",
			section: &config.APISection{
				CORS: &config.CORSSection{
					Enable:  &enabled,
					Origins: []string{"https://example.com"},
					Methods: []string{http.MethodPost},
					MaxAge:  &maxAge,
				},
			},
			check: func(t *testing.T, opts APIOptions) {
				require.True(t, opts.CORS.Enabled)
				require.Equal(t, []string{"https://example.com"}, opts.CORS.AllowOrigins)
				require.Equal(t, []string{http.MethodPost}, opts.CORS.AllowMethods)
				require.Equal(t, DefaultCORSAllowHeaders(), opts.CORS.AllowedHeaders)
				require.Equal(t, time.Minute, opts.CORS.MaxAge)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			opts, err := NewAPIOptions(WithConfig(tc.section))
			require.NoError(t, err)
			tc.check(t, opts)
		})
	}
}

func TestValidateAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "valid host and port", addr: "localhost:8090"},
		{name: "valid IP and port", addr: "127.0.0.1:8090"},
		{name: "empty host with port", addr: ":8090"},
		{name: "named port", addr: "localhost:http"},
		{name: "missing port", addr: "localhost", wantErr: true},
		{name: "empty port", addr: "localhost:", wantErr: true},
		{name: "unknown named port", addr: "localhost:nope-not-a-port", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validateAddr(tc.addr)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
