package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/convtree/internal/catalog"
	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/config"
	"github.com/mozilla-ai/convtree/internal/daemon"
	"github.com/mozilla-ai/convtree/internal/flags"
)

// ServeCmd represents the 'serve' command.
type ServeCmd struct {
	*cmd.BaseCmd
	Addr           string
	cfgLoader      config.Loader
	catalogBuilder catalog.Builder
}

// NewServeCmd creates a newly configured (Cobra) command.
func NewServeCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ServeCmd{
		BaseCmd:        baseCmd,
		cfgLoader:      config.NewValidatingLoader(opts.ConfigLoader, config.ValidateMappingFiles),
		catalogBuilder: opts.CatalogBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "serve",
		Short: "Serves the project's mappings over HTTP.",
		Long: `Compiles every configured mapping and serves them over an HTTP API until interrupted.
The OpenAPI documentation is available under /docs.`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"",
		fmt.Sprintf("Address for the API to bind to, defaults to the config value or %s", config.DefaultAPIAddr),
	)

	return cobraCommand, nil
}

func (c *ServeCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	addr := cfg.API.AddrOrDefault()
	if cobraCmd.Flags().Changed("addr") {
		addr = strings.TrimSpace(c.Addr)
	}

	cat, err := c.catalogBuilder.BuildCatalog(cfg)
	if err != nil {
		return err
	}

	deps, err := daemon.NewAPIDependencies(logger, cat, addr)
	if err != nil {
		return fmt.Errorf("error configuring convtree API: %w", err)
	}
	srv, err := daemon.NewAPIServer(deps, daemon.WithConfig(cfg.API))
	if err != nil {
		return fmt.Errorf("failed to create convtree API server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cobraCmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_, _ = fmt.Fprintf(cobraCmd.OutOrStdout(),
		"convtree serving %d mapping(s)\n\n  Local API:\thttp://%s/api/v1\n  OpenAPI UI:\thttp://%s/docs\n  Config file:\t%s\n\nPress Ctrl+C to stop.\n\n",
		len(cat.Names()), addr, addr, flags.ConfigFile,
	)

	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("API server exited with error", "error", err)
		return err
	}

	logger.Info("API server stopped")
	return nil
}
