package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finans/internal/amqp"
	"finans/internal/config"
	"finans/internal/log"
	"finans/internal/storage"
	"finans/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     slog.LevelInfo,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting finans-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	alerts := worker.NewAlertWorker(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Event-driven path: evaluate a user as soon as one of their
	// transactions changes.
	if cfg.EventsEnabled {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		g.Go(func() error {
			err := client.ConsumeTransactionEvents(ctx, func(event *amqp.TransactionEvent) error {
				return alerts.HandleTransactionEvent(ctx, event)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Consuming transaction events",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Transaction events disabled - running periodic sweeps only")
	}

	// Periodic path: sweep every user so budget months rolling over and
	// goal deadlines approaching get noticed without any write traffic.
	g.Go(func() error {
		if err := alerts.SweepAllUsers(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Startup sweep failed", log.FieldError, err)
		}

		ticker := time.NewTicker(cfg.AlertInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := alerts.SweepAllUsers(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Periodic sweep failed", log.FieldError, err)
				}
			}
		}
	})

	logger.Info("Alert worker configured",
		"interval", cfg.AlertInterval, "sqlite_db", cfg.SQLiteDBPath)

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
