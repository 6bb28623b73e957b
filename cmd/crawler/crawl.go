package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/chengjiao-crawler/internal/api"
	"github.com/user/chengjiao-crawler/internal/config"
	"github.com/user/chengjiao-crawler/internal/crawler"
	"github.com/user/chengjiao-crawler/internal/domain"
	"github.com/user/chengjiao-crawler/internal/monitoring"
	"github.com/user/chengjiao-crawler/internal/proxy"
	"github.com/user/chengjiao-crawler/internal/scraper"
	"github.com/user/chengjiao-crawler/internal/storage"
	"github.com/user/chengjiao-crawler/pkg/logger"
)

// recordStore is what the crawl command needs from a record backend.
type recordStore interface {
	scraper.RecordStore
	api.RecordReader
	api.Pinger
}

func newCrawlCmd() *cobra.Command {
	var (
		resume bool
		serve  bool
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run a full crawl from the seed page until the frontier is exhausted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runCrawl(ctx, cfg, log, resume, serve)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "continue an interrupted crawl from the Redis frontier, including visits that were in flight")
	cmd.Flags().BoolVar(&serve, "serve", true, "expose /metrics and /api while crawling")
	return cmd
}

func runCrawl(ctx context.Context, cfg *config.Config, logger *zap.Logger, resume, serve bool) error {
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	backends := make(map[string]api.Pinger)

	// Record store
	var records recordStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pgStore.Close()
		if err := pgStore.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		records = pgStore
		backends["postgres"] = pgStore
	default:
		records = storage.NewMemoryStore()
		logger.Warn("using in-memory record store, records are lost on exit")
	}

	// Frontier
	var (
		frontier crawler.Frontier
		seen     crawler.SeenSet
		retries  crawler.RetryCounter
	)
	switch cfg.FrontierBackend {
	case config.BackendRedis:
		redisStore := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		if resume {
			n, err := redisStore.Requeue(ctx)
			if err != nil {
				return err
			}
			logger.Info("requeued in-flight visits", zap.Int64("count", n))
		} else if err := redisStore.Reset(ctx); err != nil {
			return fmt.Errorf("reset frontier: %w", err)
		}
		frontier, seen, retries = redisStore.Frontier(), redisStore.SeenSet(), redisStore.RetryCounter()
		backends["redis"] = redisStore
	default:
		frontier, seen, retries = crawler.NewMemoryFrontier(), crawler.NewMemorySeenSet(), crawler.NewMemoryRetryCounter()
	}

	// Crawl engine
	proxyManager, err := proxy.NewManager(cfg.ProxyList(), cfg.UserAgentList())
	if err != nil {
		return err
	}
	fetcher := crawler.NewHTTPFetcher(crawler.FetcherOptions{
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, proxyManager)
	engine := crawler.NewCrawler(frontier, seen, retries, fetcher, crawler.Options{
		Workers:    cfg.CrawlWorkers,
		MaxRetries: cfg.MaxRetries,
	}, metrics, logger)

	// Extraction pipeline
	extractor, err := scraper.NewExtractor(cfg.BaseURL)
	if err != nil {
		return err
	}
	dispatcher := scraper.NewDispatcher(
		extractor,
		scraper.NewDedupGate(records, metrics, logger),
		scraper.NewIngestSink(records, metrics, logger),
		engine,
		metrics,
		logger,
	)

	// API Server
	var server *api.Server
	if serve {
		server = api.NewServer(cfg.ServerPort, engine, records, backends, metrics, logger)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("could not start server", zap.Error(err))
			}
		}()
		logger.Info("server started", zap.String("port", cfg.ServerPort))
	}

	logger.Info("crawl started",
		zap.String("seed", cfg.SeedURL),
		zap.Int("workers", cfg.CrawlWorkers),
		zap.String("store", cfg.StoreBackend),
		zap.String("frontier", cfg.FrontierBackend))

	runErr := engine.Run(ctx, domain.Visit{URL: cfg.SeedURL, State: domain.Root{}}, dispatcher)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}

	stats := engine.Stats()
	if n, err := records.Count(context.Background()); err == nil {
		stats.Records = n
	}
	logger.Info("crawl finished",
		zap.Int64("processed", stats.Processed),
		zap.Int64("failed", stats.Failed),
		zap.Int64("pending", stats.Pending),
		zap.Int64("records", stats.Records))

	if errors.Is(runErr, context.Canceled) {
		logger.Info("crawl interrupted")
		return nil
	}
	return runErr
}
