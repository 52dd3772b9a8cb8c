package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/converter"
	"github.com/mozilla-ai/convtree/internal/filter"
	"github.com/mozilla-ai/convtree/internal/printer"
)

// DescribeCmd represents the 'describe' command.
type DescribeCmd struct {
	*cmd.BaseCmd
	Format         cmd.OutputFormat
	Filters        []string
	Tree           bool
	cfgLoader      config.Loader
	catalogBuilder catalog.Builder
	color          *bool
}

// NewDescribeCmd creates a newly configured (Cobra) command.
func NewDescribeCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DescribeCmd{
		BaseCmd:        baseCmd,
		Format:         cmd.FormatText,
		cfgLoader:      opts.ConfigLoader,
		catalogBuilder: opts.CatalogBuilder,
		color:          opts.Color,
	}

	cobraCommand := &cobra.Command{
		Use:   "describe <mapping-name>",
		Short: "Prints the structure of a compiled mapping.",
		Long:  c.longDescription(),
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		"Specify the output format (one of: "+allowed.String()+")",
	)

	cobraCommand.Flags().StringArrayVar(
		&c.Filters,
		"filter",
		nil,
		"Optional, only show nodes matching key=value (can be repeated)",
	)

	cobraCommand.Flags().BoolVar(
		&c.Tree,
		"tree",
		false,
		"Draw the converter tree as a diagram",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("tree", "filter")
	cobraCommand.MarkFlagsMutuallyExclusive("tree", "format")

	return cobraCommand, nil
}

func (c *DescribeCmd) longDescription() string {
	keys, _ := filter.NewOptions(filter.FieldOptions()...)
	return fmt.Sprintf(`Prints the structure of a compiled mapping, one node per line in declaration order.

Filters narrow the listing, all filters must match. Supported keys: %s.`,
		strings.Join(keys.Keys(), ", "),
	)
}

func (c *DescribeCmd) run(cobraCmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("mapping name is required and cannot be empty")
	}

	filters, err := filter.ParseFilters(c.Filters)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	out := cobraCmd.OutOrStdout()
	fieldPrinter := printer.NewFieldPrinter(palette(out, c.color))
	handler, err := cmd.NewHandler[converter.FieldInfo](c.Format, out, fieldPrinter, cfg.Output.IndentOrDefault())
	if err != nil {
		return err
	}

	cat, err := c.catalogBuilder.BuildCatalog(cfg)
	if err != nil {
		return handler.HandleError(err)
	}

	entry, err := cat.Get(name)
	if err != nil {
		return handler.HandleError(err)
	}

	if c.Tree {
		_, err := fmt.Fprint(out, printer.Tree(entry.Root()))
		return err
	}

	infos, err := filter.Fields(converter.Describe(entry.Root()), filters)
	if err != nil {
		return handler.HandleError(err)
	}

	fieldPrinter.SetHeader(func(w io.Writer, _ int) {
		_, _ = fmt.Fprintf(w, "Mapping '%s' <%s>:\n", entry.Name, entry.Root().ExternalName())
		if entry.Description != "" {
			_, _ = fmt.Fprintf(w, "%s\n", entry.Description)
		}
		_, _ = fmt.Fprintln(w)
	})

	return handler.HandleResults(infos...)
}
