package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskmap/pkg/controller/http"
	"github.com/secmon-lab/riskmap/pkg/service/worker"
	"github.com/secmon-lab/riskmap/pkg/usecase"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"github.com/secmon-lab/riskmap/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var refreshInterval time.Duration
	var cacheTTL time.Duration
	var repoCfg config.Repository
	var exportCfg config.Export

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKMAP_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "refresh-interval",
			Usage:       "Interval of the background analysis refresh (0 disables it)",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("RISKMAP_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Lifetime of a cached analysis report (0 disables caching)",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("RISKMAP_CACHE_TTL"),
			Destination: &cacheTTL,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, exportCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithCacheTTL(cacheTTL))

			httpOpts := []httpctrl.Options{
				httpctrl.WithVersion(version),
			}

			var refreshWorker *worker.AnalysisRefreshWorker
			if refreshInterval > 0 {
				var workerOpts []worker.WorkerOption

				writer, name, err := exportCfg.Configure(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to configure report export")
				}
				if writer != nil {
					defer safe.Close(ctx, writer)
					workerOpts = append(workerOpts, worker.WithReportExport(writer, name))
				}

				refreshWorker = worker.NewAnalysisRefreshWorker(uc.Analysis, refreshInterval, workerOpts...)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start analysis refresh worker")
				}
				httpOpts = append(httpOpts, httpctrl.WithRefreshStatus(refreshWorker.Status))
			} else if exportCfg.Enabled() {
				logger.Warn("Report export requires a positive refresh interval, export is disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Analysis, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"repository", repoCfg,
					"refresh_interval", refreshInterval.String(),
					"cache_ttl", cacheTTL.String())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			stopWorker := func() {
				if refreshWorker != nil {
					refreshWorker.Stop()
				}
			}

			select {
			case err := <-errCh:
				stopWorker()
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
				stopWorker()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
