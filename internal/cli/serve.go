package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve uploaded recordings over HTTP",
		Long: `Start an HTTP server that accepts PageGraph recordings and answers
node, edge, request and named queries against them as JSON.

Recordings are held in memory until deleted or the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := server.New(server.Config{
				Addr:           addr,
				MaxUploadBytes: c.cfg.Server.MaxUploadMB << 20,
				Logger:         loggerFromContext(cmd.Context()),
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
