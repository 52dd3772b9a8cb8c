package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it against os.Args.
func Execute() error {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(c *RootCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "convtree <command> [args]",
		Short:         "'convtree' converts structured data using declarative mapping definitions.",
		Long:          c.longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewInitCmd,
		NewAddCmd,
		NewRemoveCmd,
		NewListCmd,
		NewDescribeCmd,
		NewConvertCmd,
		NewValidateCmd,
		NewServeCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(c.BaseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'convtree' CLI manages a project of mapping definitions and runs them.

Each mapping compiles into a tree of converter nodes that reads fields from an input object
and writes them into a JSON, YAML, TOML or XML document. Mappings can also be served over HTTP.`
}
