/**
 * @description
 * Entry point for the enrollment service. It wires configuration, the
 * database pool, the optional Redis and RabbitMQ connections, the external
 * API clients, the HTTP server, and the in-process renewal cron.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/protonmedicare/enrollment-service/internal/api"
	"github.com/protonmedicare/enrollment-service/internal/app"
	"github.com/protonmedicare/enrollment-service/internal/config"
	"github.com/protonmedicare/enrollment-service/internal/store"
	"github.com/protonmedicare/enrollment-service/pkg/auditclient"
	"github.com/protonmedicare/enrollment-service/pkg/paystackclient"
	medirabbit "github.com/protonmedicare/enrollment-service/pkg/rabbitmq"
	"github.com/protonmedicare/enrollment-service/pkg/renewalclient"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	pgConfig.MaxConns = 100
	pgConfig.MinConns = 20
	pgConfig.MaxConnLifetime = 30 * time.Minute
	pgConfig.MaxConnIdleTime = 5 * time.Minute
	pgConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, pgConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	repository := store.NewRepository(dbpool)
	gateway := paystackclient.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey)
	provider := renewalclient.NewClient(cfg.RenewalAPIURL, cfg.RenewalAPIToken)
	audit := auditclient.NewClient(cfg.AuditSinkURL)

	var publisher app.EventPublisher = &medirabbit.NoopProducer{}
	if cfg.RabbitMQURL != "" {
		if producer, err := medirabbit.NewEventProducer(cfg.RabbitMQURL); err == nil {
			publisher = producer
			defer producer.Close()
		} else {
			logger.Warn("failed to connect to RabbitMQ, using noop publisher", "error", err)
		}
	}

	var limiter *app.EnrollmentRateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("invalid REDIS_URL, enrollment rate limiting disabled", "error", err)
		} else {
			limiter = app.NewEnrollmentRateLimiter(redis.NewClient(opts), "protonmedicare:enroll", cfg.EnrollmentRPM, time.Minute)
		}
	}

	service := app.NewService(repository, gateway, publisher, logger, cfg.PaymentCallbackURL)
	runner := app.NewRenewalRunner(repository, provider, audit, publisher, logger)
	scheduler := app.NewScheduler(runner, logger, cfg.RenewalJobSchedule)

	handler := api.NewHandler(service, runner)
	router := api.NewRouter(handler, cfg.SessionJWTSecret, cfg.RenewalCronSecret, limiter)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	scheduler.Start()
	logger.Info("renewal scheduler started", "schedule", cfg.RenewalJobSchedule)

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("renewal scheduler stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
