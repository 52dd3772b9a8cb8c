package cmd

import (
	"fmt"
	"io"

	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/flags"
	"github.com/mozilla-ai/convtree/internal/printer"
)

// loadConfig loads the project configuration from the configured config file path.
func loadConfig(loader config.Loader) (*config.Config, error) {
	mod, err := loader.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg, ok := mod.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", mod)
	}

	return cfg, nil
}

// palette returns the colour palette for text written to w.
// A forced value wins over terminal detection.
func palette(w io.Writer, forced *bool) printer.Palette {
	if forced != nil {
		return printer.NewPalette(*forced)
	}
	return printer.NewPalette(printer.ColorEnabled(w))
}
