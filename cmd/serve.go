package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/motion/internal/adapters/http/api"
	"github.com/okian/motion/internal/adapters/http/swagger"
	app "github.com/okian/motion/internal/app"
	"github.com/okian/motion/internal/config"
	"github.com/okian/motion/pkg/logger"
	"github.com/okian/motion/pkg/metrics"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP service",
		Long: `Runs the HTTP API. The reference library is seeded from the SQLite store
(--db) and the data file (--data); with --watch the data file is reloaded
whenever it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config, :9080)")
	cmd.Flags().String("data", "", "reference record file loaded at start")
	cmd.Flags().String("db", "", "SQLite reference store")
	cmd.Flags().Int("workers", 0, "classification workers")
	cmd.Flags().Bool("strict-bins", true, "skip reference records that do not fill whole bins")
	cmd.Flags().Bool("watch", false, "reload the data file when it changes")
	return cmd
}

func newService(cfg *config.Config, opts ...app.Option) *app.Service {
	base := []app.Option{
		app.WithLogger(logger.Get().Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithResultRetention(cfg.ResultRetention),
		app.WithStrictBins(cfg.StrictBins),
	}
	return app.New(append(base, opts...)...)
}

// withReferenceSources seeds the library from the configured file and store.
func withReferenceSources(cfg *config.Config) []app.Option {
	return []app.Option{app.WithDataFile(cfg.DataFile), app.WithDBPath(cfg.DBPath)}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc := newService(cfg, append(withReferenceSources(cfg), app.WithWatchDataFile(cfg.WatchDataFile))...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxBodyBytes(cfg.MaxBodyBytes)).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// startServiceMetricsUpdater publishes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics copies queue and worker figures from the service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
