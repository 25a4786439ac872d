package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Keshvi-8/fleet-ledger/internal/app"
	"github.com/Keshvi-8/fleet-ledger/internal/billing"
	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
	"github.com/Keshvi-8/fleet-ledger/internal/platform/cache"
	"github.com/Keshvi-8/fleet-ledger/internal/platform/db"
	"github.com/Keshvi-8/fleet-ledger/internal/receivables"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
	"github.com/Keshvi-8/fleet-ledger/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	fleetRepo := fleet.NewRepository(pool)
	fleetService := fleet.NewService(fleetRepo)

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(logger, billingRepo, fleetService, nil, cfg.PeriodLookbackMonths)

	receivablesCache := receivables.NewCache(redisClient, cfg.ReceivablesCacheTTL)
	receivablesService := receivables.NewService(logger, billingRepo, receivablesCache)

	idempotency := shared.NewIdempotencyStore(pool)

	refreshTask, err := jobs.NewReceivablesRefreshTask(time.Now())
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewIdempotencyCleanupTask(48 * time.Hour)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReceivablesRefresh, Handler: jobs.NewReceivablesRefreshHandler(receivablesService, logger)},
			{Type: jobs.TaskBillReminder, Handler: jobs.NewBillReminderHandler(billingService, logger)},
			{Type: jobs.TaskIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupHandler(idempotency, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(2)}},
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
