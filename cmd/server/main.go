package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/rally/internal/api"
	"github.com/hugh/rally/internal/auth"
	"github.com/hugh/rally/internal/database"
	"github.com/hugh/rally/internal/events"
	"github.com/hugh/rally/internal/tasks"
	"github.com/hugh/rally/pkg/config"
	"github.com/hugh/rally/pkg/queue"
	"github.com/hugh/rally/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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

	logger.Info("starting Rally server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(context.Background(), db, logger); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Notification bus
	var asynqClient *asynq.Client
	var amqpPublisher *events.AMQPPublisher
	var publisher events.Publisher = events.LogPublisher{Logger: logger}

	switch cfg.Events.Driver {
	case "asynq":
		if redisClient == nil {
			logger.Warn("Redis unavailable, verification mail will only be logged")
			break
		}
		asynqClient = queue.NewClient(&cfg.Redis)
		publisher = tasks.NewPublisher(asynqClient)
	case "amqp":
		amqpPublisher = events.NewAMQPPublisher(cfg.Events.AMQPURL, logger)
		publisher = amqpPublisher
	case "none", "":
	default:
		logger.Error("unknown events driver", "driver", cfg.Events.Driver)
		os.Exit(1)
	}

	bus := events.NewBus(publisher, cfg.Events.BufferSize, logger)
	bus.Start()

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, auth.NewBcryptHasher(cfg.Auth.BcryptCost), jwtService, logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		Events:         bus,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Publish whatever registrations are still buffered
	if err := bus.Close(ctx); err != nil {
		logger.Error("event bus shutdown error", "error", err)
	}

	if asynqClient != nil {
		asynqClient.Close()
	}
	if amqpPublisher != nil {
		amqpPublisher.Close()
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
