package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/convtree/internal/contracts"
)

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8090").
	Addr string

	// Catalog holds the mappings served by the API.
	Catalog contracts.MappingCatalog

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	cat contracts.MappingCatalog,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:    addr,
		Catalog: cat,
		Logger:  logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := validateAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if d.Catalog == nil || reflect.ValueOf(d.Catalog).IsNil() {
		return fmt.Errorf("catalog cannot be nil")
	}
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}
