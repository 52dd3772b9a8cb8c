package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/flags"
	"github.com/mozilla-ai/convtree/internal/perms"
)

var _ catalog.Builder = (*BaseCmd)(nil)

type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger.
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the logger for the command, creating it from the log flags on first use.
// Without a log path, logs are discarded.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	logLevel := strings.ToLower(strings.TrimSpace(flags.LogLevel))
	if logLevel == "" {
		logLevel = flags.DefaultLogLevel
	}
	level := hclog.LevelFromString(logLevel)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level '%s'", logLevel)
	}

	var output io.Writer = io.Discard
	if logPath := strings.TrimSpace(flags.LogPath); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "convtree",
		Level:  level,
		Output: output,
	})

	return c.logger, nil
}

// RequireTogether returns an error when some, but not all, of the named flags were set.
func (c *BaseCmd) RequireTogether(cmd *cobra.Command, flagNames ...string) error {
	set := 0
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			set++
		}
	}
	if set == 0 || set == len(flagNames) {
		return nil
	}

	names := slices.Clone(flagNames)
	slices.Sort(names)
	return fmt.Errorf("flags must be provided together or not at all (%s)", strings.Join(names, ", "))
}

// BuildCatalog compiles every mapping listed in cfg.
func (c *BaseCmd) BuildCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	cat, err := catalog.New(
		catalog.WithLogger(logger),
		catalog.WithConcurrency(cfg.API.ConcurrencyOrDefault()),
	)
	if err != nil {
		return nil, err
	}

	if err := cat.Load(cfg); err != nil {
		return nil, err
	}

	return cat, nil
}
