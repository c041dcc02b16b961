package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/rally/internal/database"
	"github.com/hugh/rally/internal/events"
	"github.com/hugh/rally/internal/mailer"
	"github.com/hugh/rally/internal/tasks"
	"github.com/hugh/rally/pkg/config"
	"github.com/hugh/rally/pkg/queue"
	"github.com/hugh/rally/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting Rally worker", "events_driver", cfg.Events.Driver, "mail_driver", cfg.Mail.Driver)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	m, err := mailer.NewFromConfig(&cfg.Mail, cfg.Server.AppURL, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	// Create task handler
	handler := tasks.NewHandler(db, logger, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Events.Driver {
	case "amqp":
		logger.Info("consuming events", "queue", events.QueueUserRegistered)
		err := events.Consume(ctx, cfg.Events.AMQPURL, events.QueueUserRegistered, handler.HandleEvent, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer error", "error", err)
		}
	default:
		runAsynq(ctx, cfg, handler, logger)
	}

	logger.Info("worker stopped")
}

func runAsynq(ctx context.Context, cfg *config.Config, handler *tasks.Handler, logger *slog.Logger) {
	srv := queue.NewServer(&cfg.Redis, 10)

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	if err := srv.Start(mux); err != nil {
		logger.Error("worker error", "error", err)
		return
	}
	logger.Info("worker started, waiting for tasks...")

	<-ctx.Done()
	logger.Info("shutting down worker...")
	srv.Shutdown()
}
