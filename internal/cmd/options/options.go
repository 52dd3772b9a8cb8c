package options

import (
	"fmt"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/cmd"
	"github.com/mozilla-ai/convtree/internal/config"
)

type CmdOption func(*CmdOptions) error

type CmdOptions struct {
	ConfigLoader      config.Loader
	ConfigInitializer config.Initializer
	CatalogBuilder    catalog.Builder

	// Color forces coloured text output on or off. Nil detects it from the output writer.
	Color *bool
}

func defaultOptions() CmdOptions {
	configLoader := &config.DefaultLoader{}
	return CmdOptions{
		ConfigLoader:      configLoader,
		ConfigInitializer: configLoader,
		CatalogBuilder:    &cmd.BaseCmd{},
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

func WithConfigLoader(l config.Loader) CmdOption {
	return func(o *CmdOptions) error {
		if l == nil {
			return fmt.Errorf("config loader cannot be nil")
		}
		o.ConfigLoader = l
		return nil
	}
}

func WithConfigInitializer(i config.Initializer) CmdOption {
	return func(o *CmdOptions) error {
		if i == nil {
			return fmt.Errorf("config initializer cannot be nil")
		}
		o.ConfigInitializer = i
		return nil
	}
}

func WithCatalogBuilder(b catalog.Builder) CmdOption {
	return func(o *CmdOptions) error {
		if b == nil {
			return fmt.Errorf("catalog builder cannot be nil")
		}
		o.CatalogBuilder = b
		return nil
	}
}

func WithColor(enabled bool) CmdOption {
	return func(o *CmdOptions) error {
		o.Color = &enabled
		return nil
	}
}
