package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"systems-api/internal/middleware"
	"systems-api/internal/permit"
	"systems-api/internal/procname"
	"systems-api/internal/search"
	"systems-api/internal/server"
	serverHandlers "systems-api/internal/server/handlers"
	"systems-api/internal/shared/config"
	"systems-api/internal/shared/database"
	"systems-api/internal/shared/logger"
	"systems-api/internal/shared/redis"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init("server")

	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	logger := slog.With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.RunMigrations(ctx, os.DirFS(cfg.Database.MigrationsPath)); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb, err := redis.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("Failed to close redis", "error", err)
		}
	}()

	names := procname.New()
	permitService := permit.NewService(permit.NewRepository(db, slog.Default()), cfg.Search.PermitCacheTTL, slog.Default())
	searchService := search.NewService(search.NewRepository(db, slog.Default()), permitService, names, slog.Default())

	var (
		searcher    search.Searcher = searchService
		redisHealth serverHandlers.Pinger
	)
	if rdb != nil {
		redisHealth = serverHandlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		if cfg.Search.CacheEnabled {
			searcher = search.NewCachedSearcher(searchService, rdb.Client, cfg.Search.CacheTTL, slog.Default())
		}
	}

	routes := server.NewRoutes(searcher, names, db, redisHealth, slog.Default())
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	cors := middleware.NewCORS(cfg.Frontend)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      cors.Middleware(rateLimiter.Middleware(routes.Setup())),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rateLimiter.RunCleanup(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "environment", cfg.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}
