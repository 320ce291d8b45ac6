package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/internal/server"
	"github.com/matzehuels/historydag/pkg/hdag"
	"github.com/matzehuels/historydag/pkg/observability"
)

// serveCommand runs the HTTP query service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [dag.json]",
		Short: "Serve queries over a DAG via HTTP",
		Long: `Serve loads a DAG (or starts empty) and answers queries over HTTP.
POST /merge merges further DAGs into the served one. Prometheus metrics are
exposed on /metrics.`,
		Example: `  hdag serve merged.json --addr :8080
  curl localhost:8080/summary`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}

			var d *hdag.DAG
			if len(args) == 1 {
				var err error
				if d, err = readDAG(cmd, args[0]); err != nil {
					return err
				}
				c.Logger.Info("loaded DAG", "path", args[0], "nodes", d.NodeCount(), "edges", d.EdgeCount())
			}

			prom := observability.NewPrometheusHooks(nil)
			observability.SetPipelineHooks(prom)
			observability.SetCacheHooks(prom)
			observability.SetServerHooks(prom)
			defer observability.Reset()

			srv := server.New(d, server.Options{
				Logger:       c.Logger,
				Metrics:      prom.Handler(),
				MaxBodyBytes: c.Config.Serve.MaxBodyBytes,
				ReadTimeout:  c.Config.Serve.ReadTimeout,
				WriteTimeout: c.Config.Serve.WriteTimeout,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
