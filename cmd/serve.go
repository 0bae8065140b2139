package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foglio/clipper/internal/api"
	"github.com/foglio/clipper/internal/cache"
	"github.com/foglio/clipper/internal/citations"
	"github.com/foglio/clipper/internal/clock/system"
	"github.com/foglio/clipper/internal/config"
	"github.com/foglio/clipper/internal/extractor"
	"github.com/foglio/clipper/internal/fetcher"
	uuidgen "github.com/foglio/clipper/internal/id/uuid"
	"github.com/foglio/clipper/internal/metrics"
	"github.com/foglio/clipper/internal/service"
	"github.com/foglio/clipper/internal/store/redis"
)

const shutdownGrace = 10 * time.Second

// newServeCmd creates the 'serve' subcommand, which runs the HTTP API
// backed by Redis.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clipper HTTP API server",
		Long: `Starts the HTTP API server. Requires a reachable Redis instance;
startup fails fast if the store cannot be pinged.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	kv := redis.New(redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if cerr := kv.Close(); cerr != nil {
			logger.Warn("Failed to close store", zap.Error(cerr))
		}
	}()

	ctx := cmd.Context()

	contentCache, err := cache.New(ctx, kv, cache.Config{
		TTL:                  cfg.CacheTTL(),
		CompressionThreshold: cfg.Cache.CompressionThreshold,
	}, logger)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	cites := citations.New(kv, system.New(), uuidgen.New(), cfg.CitationTTL(), logger)

	f := newFetcher(cfg, logger)
	defer f.Close()

	svc := service.New(
		f,
		extractor.New(cfg.Extractor.MinContentLength),
		contentCache,
		cites,
		cfg.Citations.ExcerptLength,
		logger,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(svc, kv, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serr := srv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
		}
	}()
	logger.Info("Server listening", zap.Int("port", cfg.Server.Port))

	select {
	case <-ctx.Done():
	case serr := <-errCh:
		return fmt.Errorf("serve: %w", serr)
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		return fmt.Errorf("shutdown: %w", serr)
	}
	logger.Info("Server stopped")
	return nil
}

// newFetcher translates HTTP config into a constructed fetcher.
func newFetcher(cfg config.Config, logger *zap.Logger) *fetcher.Fetcher {
	return fetcher.New(fetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
		Retry: &fetcher.RetryPolicy{
			MaxAttempts: cfg.HTTP.MaxRetries,
			Multiplier:  time.Second,
			MinWait:     time.Duration(cfg.HTTP.BackoffMinSeconds) * time.Second,
			MaxWait:     time.Duration(cfg.HTTP.BackoffMaxSeconds) * time.Second,
		},
	}, logger)
}
