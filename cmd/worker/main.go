package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scholaris-erp/scholaris/internal/accounting"
	"github.com/scholaris-erp/scholaris/internal/app"
	"github.com/scholaris-erp/scholaris/internal/observability"
	"github.com/scholaris-erp/scholaris/internal/platform/cache"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
	"github.com/scholaris-erp/scholaris/internal/shared"
	"github.com/scholaris-erp/scholaris/jobs"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	module := accounting.NewModule(accounting.Options{
		Pool:             pool,
		Redis:            redisClient,
		Logger:           logger,
		Audit:            shared.NewAuditLogger(pool),
		Recorder:         metrics,
		RecalcTimeout:    cfg.LedgerRecalcTimeout,
		CacheTTL:         cfg.LedgerCacheTTL,
		ClosingJournalID: cfg.LedgerClosingJournalID,
	})

	reconcileJob := jobs.NewBalancesReconcileJob(module.Balances, logger, metrics.Jobs())
	integrityJob := jobs.NewGLIntegrityJob(module.Reports, logger, metrics.Jobs())
	rolloverJob := jobs.NewPeriodRolloverJob(module.Periods, cfg.LedgerRolloverPeriodType, logger, metrics.Jobs())
	postingJob := jobs.NewIntegrationPostingJob(module.Hooks, logger, metrics.Jobs())

	cron, err := jobs.LedgerCron(time.Now().UTC())
	if err != nil {
		logger.Error("build ledger schedule", slog.Any("error", err))
		os.Exit(1)
	}

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskBalancesReconcile, Handler: reconcileJob.Handle},
		{Type: jobs.TaskGLIntegrity, Handler: integrityJob.Handle},
		{Type: jobs.TaskPeriodRollover, Handler: rolloverJob.Handle},
	}
	handlers = append(handlers, postingJob.Handlers()...)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers:    handlers,
		Cron:        cron,
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
