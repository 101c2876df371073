package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/tokenscope/internal/metrics"
	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/poller"
	"github.com/rickgao/tokenscope/internal/queue"
	"github.com/rickgao/tokenscope/internal/screener"
	"github.com/rickgao/tokenscope/internal/server"
	"github.com/rickgao/tokenscope/internal/stream"
	"github.com/rickgao/tokenscope/internal/version"
	"github.com/rickgao/tokenscope/internal/writer"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	logger := newLogger(cfg)
	logger.Info("starting screener",
		"version", version.Version,
		"commit", version.Commit,
		"provider", cfg.Provider.Kind,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("tokenscope", reg)

	src, err := newProvider(cfg, pool, logger)
	if err != nil {
		return err
	}

	session := screener.New(feedConfig(cfg),
		screener.WithLogger(logger.With("component", "screener")),
		screener.WithObserver(m),
	)

	hub := stream.NewHub(stream.DefaultHubConfig(), session, logger.With("component", "stream"))
	hub.SetObserver(m)
	session.AddPublisher(hub)

	var archive *writer.TickWriter
	if cfg.Archive.Enabled {
		ticks := queue.New[model.PriceUpdate](cfg.Archive.BatchSize, cfg.Archive.BufferSize)
		session.AddPublisher(screener.PublisherFunc(func(u model.PriceUpdate) {
			ticks.Send(u)
			m.SetArchiveQueued(ticks.Len())
		}))

		sessionID := uuid.NewString()
		archive = writer.NewTickWriter(writer.WriterConfig{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
		}, sessionID, ticks, pool, logger.With("component", "archive"))
		archive.SetObserver(m)
		logger.Info("price tick archive enabled", "session_id", sessionID)
	}

	batches := poller.New(poller.Config{
		Interval: cfg.Poller.Interval,
		Timeout:  cfg.Poller.Timeout,
	}, src, session, logger.With("component", "poller"))
	batches.SetObserver(m)

	opts := server.Options{
		Stream:      hub,
		Metrics:     m.Handler(),
		MetricsPath: cfg.Metrics.Path,
		Refresher:   batches,
		Logger:      logger.With("component", "http"),
	}
	if pool != nil {
		opts.Database = pool
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewHandler(session, opts),
	}

	session.Start()
	if archive != nil {
		if err := archive.Start(ctx); err != nil {
			return fmt.Errorf("start archive: %w", err)
		}
	}
	if err := batches.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := batches.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop poller: %w", err))
		}
		session.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http: %w", err))
		}
		hub.Close()
		if archive != nil {
			if err := archive.Stop(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("stop archive: %w", err))
			}
			stats := archive.Stats()
			logger.Info("archive stopped", "inserts", stats.Inserts, "errors", stats.Errors)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("screener exited with error", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
