package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/scholaris-erp/scholaris/cmd/ledgerctl/cli"
	"github.com/scholaris-erp/scholaris/internal/accounting"
	"github.com/scholaris-erp/scholaris/internal/app"
	"github.com/scholaris-erp/scholaris/internal/platform/cache"
	"github.com/scholaris-erp/scholaris/internal/platform/db"
	"github.com/scholaris-erp/scholaris/internal/shared"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	load := func(ctx context.Context) (*cli.Env, error) {
		cfg, err := app.LoadConfig()
		if err != nil {
			return nil, err
		}
		logger := app.NewLogger(cfg)

		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		cleanup = append(cleanup, pool.Close)

		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		} else {
			cleanup = append(cleanup, func() { _ = redisClient.Close() })
		}

		module := accounting.NewModule(accounting.Options{
			Pool:             pool,
			Redis:            redisClient,
			Logger:           logger,
			Audit:            shared.NewAuditLogger(pool),
			RecalcTimeout:    cfg.LedgerRecalcTimeout,
			CacheTTL:         cfg.LedgerCacheTTL,
			ClosingJournalID: cfg.LedgerClosingJournalID,
		})

		jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		cleanup = append(cleanup, func() { _ = jobsCLI.Close() })

		return &cli.Env{
			Balances:    module.Balances,
			Reports:     module.Reports,
			Periods:     module.Periods,
			Close:       module.Close,
			Jobs:        jobsCLI,
			TokenSecret: cfg.JWTSecret,
		}, nil
	}

	if err := cli.NewRootCommand(load).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
