package catalog

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/mapping"
)

// Options contains optional configuration for the Catalog.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Logger is used by the catalog and passed to every compiled mapping.
	Logger hclog.Logger

	// Concurrency limits how many inputs of a batch are converted at once.
	Concurrency int

	// Functions resolves the decorators and mappers named by definitions.
	Functions *mapping.Functions
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		Logger:      hclog.NewNullLogger(),
		Concurrency: config.DefaultConcurrency,
		Functions:   mapping.DefaultFunctions(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(o *Options) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		o.Logger = logger
		return nil
	}
}

// WithConcurrency limits how many inputs of a batch are converted at once.
func WithConcurrency(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		o.Concurrency = n
		return nil
	}
}

// WithFunctions replaces the registry of named decorators and mappers used to compile definitions.
func WithFunctions(fns *mapping.Functions) Option {
	return func(o *Options) error {
		if fns == nil {
			return fmt.Errorf("functions cannot be nil")
		}
		o.Functions = fns
		return nil
	}
}

// Builder creates a Catalog from configuration.
type Builder interface {
	BuildCatalog(cfg *config.Config) (*Catalog, error)
}
