// Package main is the entry point for the job board API server.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	"jobboard/internal/domain/jobfilter"
	"jobboard/internal/domain/jobpost"
	"jobboard/internal/fixtures"
	"jobboard/internal/infrastructure/cache"
	v1 "jobboard/internal/infrastructure/http/v1"
	"jobboard/internal/infrastructure/http/v1/handlers"
	"jobboard/internal/infrastructure/storage/memory"
	"jobboard/internal/infrastructure/storage/postgres"
	"jobboard/internal/infrastructure/storage/postgres/jobpost_repo"
	"jobboard/internal/infrastructure/storage/postgres/sqlfilter"
	"jobboard/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg := loadConfig()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	clk := clock.New()
	compilerOpts := []jobfilter.Option{jobfilter.WithClock(clk), jobfilter.WithLocation(cfg.FilterLocation)}
	routerCfg := v1.RouterConfig{
		Logger:            log,
		MetadataRegistry:  setupMetadataRegistry(),
		Compression:       cfg.Compression,
		CompressThreshold: cfg.CompressThreshold,
	}

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, serving the bundled fixture from memory")
		store, _, err := memory.LoadFixture(bytes.NewReader(fixtures.Jobs))
		if err != nil {
			log.Fatalw("failed to load fixture", "error", err)
		}
		compiler := jobfilter.NewCompiler(jobfilter.DefaultRegistry(), store, compilerOpts...)
		routerCfg.JobPosts = jobpost.NewService(store, compiler, nil)
		routerCfg.Compiler = compiler
		routerCfg.Attributes = store
		routerCfg.Health = handlers.NewHealthHandler("jobboard", version, nil, map[string]handlers.StatsFunc{
			"job_posts": func() any { return len(store.Posts()) },
		})
		serve(ctx, log, cfg, routerCfg)
		return
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)
	schemaRepo := jobpost_repo.NewSchemaRepo(txm)

	attrs := cache.NewAttributeCache(schemaRepo, clk)
	if err := attrs.Load(ctx); err != nil {
		log.Fatalw("failed to load attributes", "error", err)
	}
	rels, err := cache.NewRelationCache(schemaRepo, cfg.AttributeCacheSize)
	if err != nil {
		log.Fatalw("failed to create relation cache", "error", err)
	}
	lookup := cache.NewLookup(attrs, rels)

	listener := cache.NewListener(pool.Pool)
	attrs.Subscribe(listener)
	rels.Subscribe(listener)
	listener.Start(ctx)
	defer listener.Stop()

	compiler := jobfilter.NewCompiler(jobfilter.DefaultRegistry(), lookup, compilerOpts...)
	routerCfg.JobPosts = jobpost.NewService(jobpost_repo.NewRepo(txm), compiler, txm)
	routerCfg.Compiler = compiler
	routerCfg.SQL = sqlfilter.New(sqlfilter.JobPostSchema())
	routerCfg.Attributes = attrs
	routerCfg.Health = handlers.NewHealthHandler("jobboard", version, pool, map[string]handlers.StatsFunc{
		"database": func() any { return pool.Stats() },
		"cache":    func() any { return lookup.Stats() },
	})

	go logPoolStats(ctx, pool, time.Minute)

	serve(ctx, log, cfg, routerCfg)
}

func serve(ctx context.Context, log *logger.Logger, cfg config, routerCfg v1.RouterConfig) {
	router, err := v1.NewRouter(routerCfg)
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "version", version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
}

func logPoolStats(ctx context.Context, pool *postgres.Pool, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pool.LogStats(ctx)
		}
	}
}
