package cli

import (
	"context"
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ridasset/internal/config"
	"github.com/matzehuels/ridasset/internal/server"
	"github.com/matzehuels/ridasset/pkg/observability"
	"github.com/matzehuels/ridasset/pkg/platform"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution API over HTTP",
		Long: `Serve runs the HTTP API until interrupted. Requests that name no RID are
resolved for the platform the server runs on. Prometheus metrics are exposed
on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr, then "+config.DefaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	observability.SetResolveHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetAPIHooks(metrics)

	srv := server.New(runner, c.Config.Server,
		server.WithLogger(logger),
		server.WithDetector(platform.Current()),
		server.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	err = srv.ListenAndServe(ctx)
	if stderrors.Is(err, context.Canceled) {
		logger.Info("server stopped")
	}
	return err
}
