package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"smartspend/internal/amqp"
	"smartspend/internal/analytics"
	"smartspend/internal/backend"
	"smartspend/internal/cache"
	"smartspend/internal/config"
	"smartspend/internal/core"
	"smartspend/internal/expense"
	apphttp "smartspend/internal/http"
	"smartspend/internal/log"
	"smartspend/internal/metrics"
	"smartspend/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.DefaultConfig().Level
	}
	logger := log.New(log.Config{Level: level, Format: cfg.LogFormat, Component: log.ComponentApp})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := func() time.Time { return time.Now().In(loc) }
	core.SetTimestampLocation(loc)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	kv, err := backend.NewFactory(logger).Open(ctx, backendCfg)
	if err != nil {
		return err
	}

	recorder := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	adapter := storage.NewAdapter(kv, storage.WithLogger(logger), storage.WithMetrics(recorder))
	defer adapter.Close()

	lists := cache.NewLRU[[]core.Expense](cfg.ListCacheSize, cfg.ListCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentStore))
	cacheManager.Register(lists)
	if cfg.ListCacheTTL > 0 {
		cacheManager.StartCleanup(cfg.ListCacheTTL)
		defer cacheManager.Stop()
	}

	store := expense.NewStore(ctx, adapter,
		expense.WithClock(clock),
		expense.WithLogger(logger),
		expense.WithMetrics(recorder),
		expense.WithListCache(lists),
	)
	engine := analytics.NewEngine(store, analytics.WithClock(clock), analytics.WithLogger(logger))
	defer engine.Close()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		publisher := amqp.NewPublisher(client, 256, logger)
		unsubscribe := store.Subscribe(publisher.Handle)
		defer unsubscribe()
		g.Go(func() error { return publisher.Run(gctx) })
		logger.Info("Publishing expense events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Store:              store,
		Analytics:          engine,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready: func(ctx context.Context) error {
			_, _, err := kv.Get(ctx, storage.KeyExpenses)
			return err
		},
	})

	g.Go(func() error {
		logger.Info("Starting smartspend server",
			"port", cfg.Port, "backend", cfg.StorageBackend, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
