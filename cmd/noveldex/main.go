package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/noveldex/internal/config"
	"github.com/kailas-cloud/noveldex/internal/db"
	dbParquet "github.com/kailas-cloud/noveldex/internal/db/parquet"
	logpkg "github.com/kailas-cloud/noveldex/internal/logger"
	"github.com/kailas-cloud/noveldex/internal/metrics"
	detailrepo "github.com/kailas-cloud/noveldex/internal/repository/detail"
	indexrepo "github.com/kailas-cloud/noveldex/internal/repository/index"
	chiTransport "github.com/kailas-cloud/noveldex/internal/transport/chi"
	browseuc "github.com/kailas-cloud/noveldex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/noveldex/internal/usecase/health"
	"github.com/kailas-cloud/noveldex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting noveldex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("store_pattern", cfg.Store.Pattern),
		zap.Int("page_size", cfg.Browse.PageSize),
		zap.Duration("index_ttl", cfg.Browse.IndexTTL()),
	)

	var store db.Store
	store, err = dbParquet.NewStore(dbParquet.Config{
		Pattern:         cfg.Store.Pattern,
		ScanConcurrency: cfg.Store.ScanConcurrency,
		Logger:          logger,
	})
	if err != nil {
		logger.Fatal("Failed to create partition store", zap.Error(err))
	}
	defer store.Close()

	// Wait for partitions to appear
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Partition store not ready", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterStoreMetrics()
	metrics.RegisterHTTPMetrics()

	cache := indexrepo.New(store, cfg.Browse.IndexTTL(), metrics.IndexCacheTotal, logger)

	// The first index load is terminal: nothing can be browsed without it.
	cat, err := cache.GetOrRebuild(ctx, time.Now())
	if err != nil {
		logger.Fatal("Failed to build index", zap.Error(err))
	}
	logger.Info("Index ready",
		zap.Int("records", cat.Len()),
		zap.Int("genres", len(cat.Genres())),
	)

	browseSvc := browseuc.New(cache, detailrepo.New(store)).
		WithPageSize(cfg.Browse.PageSize)
	healthSvc := healthuc.New(store, cache)

	server := chiTransport.NewServer(browseSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		chiTransport.WriteNotFound(w)
	})
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
