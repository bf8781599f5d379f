package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/railcdl/internal/server"
	"github.com/matzehuels/railcdl/pkg/config"
	"github.com/matzehuels/railcdl/pkg/observability"
	"github.com/matzehuels/railcdl/pkg/store"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

The server exposes station analysis (POST /api/generate, /api/upload,
/api/render), saved stations under /api/stations, /healthz and Prometheus
metrics on /metrics. The cache and station store backends come from the
config file or RAILCDL_REDIS_ADDR and RAILCDL_MONGO_URI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, metrics bool) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := newStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close(context.WithoutCancel(ctx))

	opts := server.Options{
		Runner:         runner,
		Store:          st,
		Logger:         c.Logger,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Threshold:      cfg.Analysis.Threshold,
		Branch:         cfg.Analysis.Branch,
	}
	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom := observability.NewPrometheus(reg)
		observability.SetPipelineHooks(prom)
		observability.SetCacheHooks(prom)
		observability.SetHTTPHooks(prom)
		defer observability.Reset()
		opts.Metrics = prom.Handler()
	}

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend,
		"threshold", cfg.Analysis.Threshold)

	return server.New(opts).ListenAndServe(ctx, cfg.Server.Addr)
}

func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Backend == "mongo" {
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	}
	return store.NewMemoryStore(), nil
}
