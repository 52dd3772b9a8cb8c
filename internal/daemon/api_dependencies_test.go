package daemon

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/catalog"
)

func TestAPIDependencies_Validate(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New()
	require.NoError(t, err)

	var nilCatalog *catalog.Catalog

	tests := []struct {
		name    string
		deps    APIDependencies
		wantErr string
	}{
		{
			name: "valid dependencies",
			deps: APIDependencies{Logger: hclog.NewNullLogger(), Catalog: cat, Addr: "localhost:8090"},
		},
		{
			name:    "nil logger",
			deps:    APIDependencies{Catalog: cat, Addr: "localhost:8090"},
			wantErr: "logger cannot be nil",
		},
		{
			name:    "nil catalog",
			deps:    APIDependencies{Logger: hclog.NewNullLogger(), Addr: "localhost:8090"},
			wantErr: "catalog cannot be nil",
		},
		{
			name:    "typed nil catalog",
			deps:    APIDependencies{Logger: hclog.NewNullLogger(), Catalog: nilCatalog, Addr: "localhost:8090"},
			wantErr: "catalog cannot be nil",
		},
		{
			name:    "bad address",
			deps:    APIDependencies{Logger: hclog.NewNullLogger(), Catalog: cat, Addr: "localhost"},
			wantErr: "invalid API address 'localhost'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.deps.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewAPIDependencies(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New()
	require.NoError(t, err)

	deps, err := NewAPIDependencies(hclog.NewNullLogger(), cat, ":8090")
	require.NoError(t, err)
	require.Equal(t, ":8090", deps.Addr)
	require.Same(t, cat, deps.Catalog)

	_, err = NewAPIDependencies(nil, cat, ":8090")
	require.ErrorContains(t, err, "logger cannot be nil")
}
