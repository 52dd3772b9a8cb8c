package cmd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/filter"
	"github.com/mozilla-ai/convtree/internal/mapping"
)

// ValidateCmd represents the 'validate' command.
type ValidateCmd struct {
	*cmd.BaseCmd
	cfgLoader config.Loader
	color     *bool
}

// NewValidateCmd creates a newly configured (Cobra) command.
func NewValidateCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ValidateCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
		color:     opts.Color,
	}

	cobraCommand := &cobra.Command{
		Use:   "validate [mapping-name...]",
		Short: "Validates mapping definitions.",
		Long: `Loads, schema-checks and compiles mapping definitions for every output target.
All configured mappings are validated when no names are given.`,
		RunE: c.run,
	}

	return cobraCommand, nil
}

func (c *ValidateCmd) run(cobraCmd *cobra.Command, args []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	entries := make(map[string]config.MappingEntry)
	available := make([]string, 0, len(cfg.Mappings))
	for _, e := range cfg.ListMappings() {
		entries[e.Name] = e
		available = append(available, e.Name)
	}

	selected, err := filter.MatchRequestedSlice(args, available)
	if err != nil {
		return fmt.Errorf("error matching requested mappings: %w", err)
	}

	out := cobraCmd.OutOrStdout()
	if len(selected) == 0 {
		_, err := fmt.Fprintln(out, "No mappings configured")
		return err
	}

	pal := palette(out, c.color)
	failed := 0
	for _, name := range selected {
		if err := validateMapping(logger, cfg.Path(entries[name])); err != nil {
			failed++
			logger.Warn("Mapping failed validation", "mapping", name, "error", err)
			_, _ = fmt.Fprintf(out, "%s %s: %v\n", pal.Removed("✗"), pal.Name(name), err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", pal.Added("✓"), pal.Name(name))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d mapping(s) failed validation", failed, len(selected))
	}

	return nil
}

func validateMapping(logger hclog.Logger, path string) error {
	def, err := mapping.LoadFile(path)
	if err != nil {
		return err
	}

	if _, err := mapping.Compile(def, mapping.DocumentTarget(), mapping.WithLogger(logger)); err != nil {
		return err
	}
	if _, err := mapping.Compile(def, mapping.XMLTarget(), mapping.WithLogger(logger)); err != nil {
		return err
	}

	return nil
}
