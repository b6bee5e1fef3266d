package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openfroyo/bodygraph/pkg/config"
	"github.com/openfroyo/bodygraph/pkg/server"
	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

func newServeCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the bodygraph HTTP API with the chart archive.

With a config file, changes to the file are picked up without a restart:
the log level and the chart timeout are applied to running requests.`,
		Example: `  bodygraph serve
  bodygraph serve --addr :9000 --config /etc/bodygraph.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			if err := a.tel.StartMetricsServer(); err != nil {
				return err
			}
			a.svc.RefreshMetrics(ctx)

			if watch && configPath != "" {
				watcher := config.NewWatcher(configPath, log.Logger)
				err := watcher.Watch(ctx, func(cfg *config.Config) error {
					telemetry.SetLogLevel(cfg.Telemetry.Logging.Level)
					a.svc.SetTimeout(cfg.Chart.Timeout)
					_ = a.tel.Events.PublishConfigReloaded(configPath)
					return nil
				})
				if err != nil {
					return err
				}
				defer watcher.Stop()
			}

			srv := server.New(a.svc, server.Options{
				DefaultSave:  a.cfg.Chart.Save,
				MaxBatchSize: a.cfg.Chart.MaxBatchSize,
				Metrics:      a.tel.Metrics.Handler(),
			}, log.Logger)

			return srv.ListenAndServe(ctx, a.cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file on change")

	return cmd
}
