package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/vedaro/shopdesk/internal/app"
	"github.com/vedaro/shopdesk/internal/backend"
	"github.com/vedaro/shopdesk/internal/history"
	"github.com/vedaro/shopdesk/internal/shared"
	"github.com/vedaro/shopdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	sessionManager := shared.NewSessionManager(redisClient, "shopdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
	historyService := history.NewService(backendClient, redisClient, cfg.HistoryCacheTTL, logger)

	warmupJob := jobs.NewHistoryWarmupJob(historyService, sessionManager, logger)
	cleanupJob := jobs.NewSessionCleanupJob(sessionManager, logger)

	warmupTask, err := jobs.NewHistoryWarmupTask(jobs.HistoryWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskHistoryWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskSessionCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/10 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
			{Spec: "0 * * * *", Task: jobs.NewSessionCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
