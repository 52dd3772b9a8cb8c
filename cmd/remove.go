package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/config"
)

// RemoveCmd should be used to represent the 'remove' command.
type RemoveCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
}

// NewRemoveCmd creates a newly configured (Cobra) command.
func NewRemoveCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &RemoveCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "remove <mapping-name>",
		Short: "Removes a mapping from the project.",
		Long:  "Removes a mapping from the project config file. The definition file itself is left in place.",
		RunE:  c.run,
	}

	return cobraCommand, nil
}

// run is configured (via NewRemoveCmd) to be called by the Cobra framework when the command is executed.
func (c *RemoveCmd) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("mapping name is required and cannot be empty")
	}
	name := strings.TrimSpace(args[0])

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	if err := cfg.RemoveMapping(name); err != nil {
		return fmt.Errorf("error removing mapping '%s': %w", name, err)
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed mapping '%s'\n", name); err != nil {
		return err
	}

	return nil
}
