package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/mapping"
)

// AddCmd should be used to represent the 'add' command.
type AddCmd struct {
	*cmd.BaseCmd
	File        string
	Description string
	cfgLoader   config.Loader
}

// NewAddCmd creates a newly configured (Cobra) command.
func NewAddCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &AddCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "add <mapping-name>",
		Short: "Adds a mapping definition to the project.",
		Long:  c.longDescription(),
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.File,
		"file",
		"",
		"Path to the mapping definition (YAML, JSON or TOML), relative to the config file",
	)
	_ = cobraCommand.MarkFlagRequired("file")

	cobraCommand.Flags().StringVar(
		&c.Description,
		"description",
		"",
		"Optional, overrides the description from the definition",
	)

	return cobraCommand, nil
}

// longDescription returns the long version of the command description.
func (c *AddCmd) longDescription() string {
	return `Adds a mapping definition to the project.
The definition is loaded and checked against the mapping schema before it is recorded in the config file.`
}

// run is configured (via NewAddCmd) to be called by the Cobra framework when the command is executed.
func (c *AddCmd) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("mapping name is required and cannot be empty")
	}
	name := strings.TrimSpace(args[0])

	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	entry := config.MappingEntry{
		Name:        name,
		File:        strings.TrimSpace(c.File),
		Description: strings.TrimSpace(c.Description),
	}

	if _, err := mapping.LoadFile(cfg.Path(entry)); err != nil {
		logger.Warn("Mapping definition failed to load", "mapping", name, "file", entry.File, "error", err)
		return fmt.Errorf("⚠️ Failed to load mapping definition '%s': %w", entry.File, err)
	}

	if err := cfg.AddMapping(entry); err != nil {
		return fmt.Errorf("error adding mapping '%s': %w", name, err)
	}

	logger.Debug("Mapping added", "mapping", name, "file", entry.File)

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ Added mapping '%s' (%s)\n", name, entry.File); err != nil {
		return err
	}

	return nil
}
