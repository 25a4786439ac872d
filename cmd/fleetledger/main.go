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

	"github.com/Keshvi-8/fleet-ledger/internal/app"
	"github.com/Keshvi-8/fleet-ledger/internal/billing"
	"github.com/Keshvi-8/fleet-ledger/internal/fleet"
	"github.com/Keshvi-8/fleet-ledger/internal/observability"
	"github.com/Keshvi-8/fleet-ledger/internal/payments"
	"github.com/Keshvi-8/fleet-ledger/internal/platform/cache"
	"github.com/Keshvi-8/fleet-ledger/internal/platform/db"
	"github.com/Keshvi-8/fleet-ledger/internal/receivables"
	receivablehttp "github.com/Keshvi-8/fleet-ledger/internal/receivables/http"
	"github.com/Keshvi-8/fleet-ledger/internal/reports"
	"github.com/Keshvi-8/fleet-ledger/internal/shared"
	"github.com/Keshvi-8/fleet-ledger/jobs"
)

func main() {
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

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	fleetRepo := fleet.NewRepository(pool)
	fleetService := fleet.NewService(fleetRepo)
	fleetHandler := fleet.NewHandler(logger, fleetService)

	enqueuer := jobs.NewEnqueuer(jobClient)

	billingRepo := billing.NewRepository(pool)
	billingService := billing.NewService(logger, billingRepo, fleetService,
		enqueuer, cfg.PeriodLookbackMonths)
	idempotency := shared.NewIdempotencyStore(pool)
	billingHandler := billing.NewHandler(logger, billingService, idempotency)

	paymentsRepo := payments.NewRepository(pool)
	paymentsService := payments.NewService(logger, paymentsRepo, enqueuer)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	receivablesCache := receivables.NewCache(redisClient, cfg.ReceivablesCacheTTL)
	if err := receivablesCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("receivables cache subscribe", slog.Any("error", err))
	}
	receivablesService := receivables.NewService(logger, billingRepo, receivablesCache)
	receivablesHandler := receivablehttp.NewHandler(logger, receivablesService)

	reportsService := reports.NewService(logger, fleetService)
	reportsHandler := reports.NewHandler(logger, reportsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		FleetHandler:       fleetHandler,
		BillingHandler:     billingHandler,
		PaymentsHandler:    paymentsHandler,
		ReceivablesHandler: receivablesHandler,
		ReportsHandler:     reportsHandler,
		JobHandler:         jobHandler,
		Pool:               pool,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
