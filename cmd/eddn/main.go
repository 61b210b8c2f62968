package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"systems-api/internal/catalog"
	"systems-api/internal/eddn"
	"systems-api/internal/ingest"
	"systems-api/internal/notify"
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

	logger.Init("eddn")

	if err := run(); err != nil {
		slog.Error("Consumer stopped with error", "error", err)
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

	notifier, closeNotifier, err := newNotifier(cfg.Reporting, rdb)
	if err != nil {
		return err
	}
	defer closeNotifier()

	repo := catalog.NewRepository(db, slog.Default())
	reporter := ingest.NewReporter(ingest.ReporterConfig{
		Interval:   cfg.Reporting.Interval,
		RetryDelay: cfg.Reporting.RetryDelay,
	}, repo, notifier, slog.Default())
	pipeline := ingest.NewPipeline(ingest.NewWriter(repo, slog.Default()), reporter, slog.Default())

	consumer := eddn.NewConsumer(eddn.ConsumerConfig{
		Endpoint:       cfg.EDDN.RelayURL,
		ReceiveTimeout: cfg.EDDN.ReceiveTimeout,
		ReconnectDelay: cfg.EDDN.ReconnectDelay,
	}, eddn.DialZMQ, pipeline, slog.Default())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting EDDN consumer", "relay", cfg.EDDN.RelayURL, "report_backend", notifier.Name())
		err := consumer.Run(gCtx)
		w := pipeline.Window()
		logger.Info("EDDN consumer stopped",
			"pending_messages", w.Messages,
			"pending_new_systems", w.NewSystems,
			"pending_new_stars", w.NewStars,
		)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

func newNotifier(cfg config.ReportingConfig, rdb *redis.Client) (notify.Notifier, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.ReportingBackendXMLRPC:
		x, err := notify.NewXMLRPC(notify.XMLRPCConfig{
			URL:     cfg.XMLRPCURL,
			Timeout: cfg.Timeout,
			Service: cfg.XMLRPCService,
			Nick:    cfg.XMLRPCNick,
			Channel: cfg.Channel,
		}, slog.Default())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create xmlrpc notifier: %w", err)
		}
		return x, func() { _ = x.Close() }, nil
	case config.ReportingBackendRedis:
		if rdb == nil {
			return nil, noop, fmt.Errorf("redis report backend needs redis enabled")
		}
		return notify.NewRedis(rdb.Client, cfg.RedisChannel, cfg.Timeout, slog.Default()), noop, nil
	default:
		return notify.NewLog(slog.Default()), noop, nil
	}
}
