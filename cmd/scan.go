package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfscan/shelfscan/internal/api"
	"github.com/shelfscan/shelfscan/internal/catalog"
	"github.com/shelfscan/shelfscan/internal/config"
	"github.com/shelfscan/shelfscan/internal/logging"
	"github.com/shelfscan/shelfscan/internal/pool"
	"github.com/shelfscan/shelfscan/internal/progress"
	"github.com/shelfscan/shelfscan/internal/progress/sinks"
	"github.com/shelfscan/shelfscan/internal/readinglist"
	"github.com/shelfscan/shelfscan/internal/report"
	"github.com/shelfscan/shelfscan/internal/session"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the catalog scan",
		Long: `Reads the reading-list export, generates one lookup per
(title, catalog) pair, executes the lookups over the worker pool, and writes
one output row per lookup.`,
		RunE: runScan,
	}

	cmd.Flags().String("input", "", "reading-list export file (overrides config)")
	cmd.Flags().String("output", "", "result file (overrides config)")
	cmd.Flags().Int("workers", 0, "worker pool size (overrides config)")

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, &cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if len(cfg.Catalogs) == 0 {
		return errors.New("no catalogs configured; add a catalogs map to the config")
	}

	// The only fatal, run-aborting failure: an unreadable reading list.
	entries, err := readinglist.Load(cfg.Input.Path)
	if err != nil {
		return err
	}
	wantToRead := readinglist.Filter(entries, cfg.Input.Shelf)

	queries := make([]catalog.Query, 0, len(wantToRead))
	for _, e := range wantToRead {
		queries = append(queries, catalog.Query{Title: e.Title, Author: e.Author})
	}
	tasks := catalog.BuildTasks(queries, cfg.Catalogs)

	logger.Info("scan plan",
		zap.Int("titles", len(wantToRead)),
		zap.Int("catalogs", len(cfg.Catalogs)),
		zap.Int("tasks", len(tasks)),
		zap.Int("workers", cfg.Scan.Workers),
	)
	if len(tasks) == 0 {
		logger.Warn("nothing to scan", zap.String("shelf", cfg.Input.Shelf))
		return nil
	}

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	tracker := progress.NewTracker(len(tasks), logger, sinks.NewLogSink(logger), promSink)
	defer tracker.Close(context.Background()) //nolint:errcheck

	manager := session.NewManager(session.Config{
		UserAgent:     cfg.Scan.UserAgent,
		SettleTimeout: cfg.SettleTimeout(),
		PollInterval:  cfg.PollInterval(),
		CatalogQPS:    cfg.Scan.CatalogQPS,
	}, logger)
	defer manager.Close()

	if cfg.Server.Enabled {
		stop := startServer(cfg.Server.Port, tracker, registry, logger)
		defer stop()
	}

	p, err := pool.New(pool.Config{
		Workers:   cfg.Scan.Workers,
		CacheSize: cfg.Scan.CacheSize,
	}, manager, tracker, logger)
	if err != nil {
		return fmt.Errorf("init pool: %w", err)
	}

	results := p.Run(cmd.Context(), tasks)

	writer, err := report.New(cfg.Output.Format, cfg.Output.Path)
	if err != nil {
		return err
	}
	if err := writer.Write(results); err != nil {
		writer.Close() //nolint:errcheck
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("scan finished",
		zap.Int("results", len(results)),
		zap.String("output", cfg.Output.Path),
	)
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if v, err := cmd.Flags().GetString("input"); err == nil && v != "" {
		cfg.Input.Path = v
	}
	if v, err := cmd.Flags().GetString("output"); err == nil && v != "" {
		cfg.Output.Path = v
	}
	v, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return fmt.Errorf("read workers flag: %w", err)
	}
	if v > 0 {
		cfg.Scan.Workers = v
	}
	return cfg.Validate()
}

func startServer(port int, tracker *progress.Tracker, registry *prometheus.Registry, logger *zap.Logger) func() {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.NewServer(tracker, registry, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("progress server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("progress server failed", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("progress server shutdown", zap.Error(err))
		}
	}
}
