package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/printer"
)

// ListCmd represents the 'list' command.
type ListCmd struct {
	*cmd.BaseCmd
	Format         cmd.OutputFormat
	cfgLoader      config.Loader
	catalogBuilder catalog.Builder
	color          *bool
}

// NewListCmd creates a newly configured (Cobra) command.
func NewListCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ListCmd{
		BaseCmd:        baseCmd,
		Format:         cmd.FormatText,
		cfgLoader:      opts.ConfigLoader,
		catalogBuilder: opts.CatalogBuilder,
		color:          opts.Color,
	}

	cobraCommand := &cobra.Command{
		Use:   "list",
		Short: "Lists the mappings configured for the project.",
		Long:  "Lists the mappings configured for the project, compiling each one to report its root and node count.",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		"Specify the output format (one of: "+allowed.String()+")",
	)

	return cobraCommand, nil
}

func (c *ListCmd) run(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	out := cobraCmd.OutOrStdout()
	handler, err := cmd.NewHandler[catalog.Summary](
		c.Format,
		out,
		printer.NewMappingPrinter(palette(out, c.color)),
		cfg.Output.IndentOrDefault(),
	)
	if err != nil {
		return err
	}

	cat, err := c.catalogBuilder.BuildCatalog(cfg)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResults(cat.Summaries()...)
}
