package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve resolution, graph rendering and plan history over HTTP.

Plans are cached in Redis when cache.url is configured, otherwise on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close(context.Background())

			srv := server.New(runner, c.Logger, server.WithTimeout(cfg.Server.Timeout.Duration))
			c.Logger.Info("listening", "addr", cfg.Server.Addr, "repository", cfg.Repository)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
