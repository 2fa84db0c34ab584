package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/orderparse/internal/metrics"
	"github.com/ppiankov/orderparse/internal/pipeline"
	"github.com/ppiankov/orderparse/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser over HTTP",
	Long: `Serve exposes the parser over HTTP:
  POST /api/v1/parse     order text as the body (text/plain, text/html)
                         or {"text": "...", "source": "..."} as JSON
  GET  /api/v1/catalog   the catalog snapshot (?date=YYYY-MM-DD narrows it)
  GET  /healthz          liveness
  GET  /metrics          Prometheus metrics

The catalog is loaded once at startup. Parse requests are rate limited
per client address.

Example:
  orderparse serve --catalog products.yaml --addr :8080
  ORDERPARSE_CATALOG_DSN=postgres://... ORDERPARSE_CATALOG_DRIVER=pgx orderparse serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Float64("rps", 5, "parse requests per second per client (0 disables limiting)")
	serveCmd.Flags().Int("burst", 10, "rate limiter burst per client")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.requests_per_second", serveCmd.Flags().Lookup("rps"))
	_ = viper.BindPFlag("server.burst_size", serveCmd.Flags().Lookup("burst"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, products, err := setup(ctx, slog.LevelInfo)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	p := pipeline.NewPipeline(cfg, products, pipeline.WithLogger(logger), pipeline.WithMetrics(reg))
	srv := server.NewServer(p, cfg.Server, reg, logger)

	logger.Info("server.start",
		"addr", cfg.Server.Addr,
		"products", len(products),
		"rps", cfg.Server.RequestsPerSecond,
		"cache", cfg.Cache.Enabled,
	)
	return srv.Run(ctx)
}
