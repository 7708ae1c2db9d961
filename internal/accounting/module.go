package accounting

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/balances"
	"github.com/scholaris-erp/scholaris/internal/accounting/journals"
	"github.com/scholaris-erp/scholaris/internal/accounting/mappings"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/reports"
	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	closepkg "github.com/scholaris-erp/scholaris/internal/close"
	"github.com/scholaris-erp/scholaris/internal/integration"
	internalShared "github.com/scholaris-erp/scholaris/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Options configures the ledger module.
type Options struct {
	Pool             *pgxpool.Pool
	Redis            *redis.Client
	Logger           *slog.Logger
	Audit            AuditPort
	Recorder         shared.OperationRecorder
	RecalcTimeout    time.Duration
	CacheTTL         time.Duration
	ClosingJournalID int64
}

// Module wires every ledger service over one pool and report cache.
type Module struct {
	Accounts *accounts.Service
	Journals *journals.Service
	Balances *balances.Service
	Periods  *periods.Service
	Reports  *reports.Service
	Close    *closepkg.Service
	Mappings *mappings.Queries
	Hooks    *integration.Hooks

	journalID int64
	logger    *slog.Logger
}

// NewModule builds the ledger services.
func NewModule(opts Options) *Module {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	journalID := opts.ClosingJournalID
	if journalID <= 0 {
		journalID = 1
	}
	cache := reports.NewCache(opts.Redis, opts.CacheTTL)

	audit := opts.Audit
	m := &Module{
		Accounts:  accounts.NewService(accounts.NewRepository(opts.Pool), audit, cache, logger),
		Journals:  journals.NewService(journals.NewRepository(opts.Pool, opts.RecalcTimeout), audit, cache, logger),
		Balances:  balances.NewService(balances.NewRepository(opts.Pool), cache, logger, opts.RecalcTimeout),
		Periods:   periods.NewService(periods.NewRepository(opts.Pool), audit, logger),
		Reports:   reports.NewService(reports.NewRepository(opts.Pool), cache, logger),
		Close:     closepkg.NewService(closepkg.NewRepository(opts.Pool, opts.RecalcTimeout), audit, cache, logger, journalID),
		Mappings:  mappings.NewQueries(opts.Pool),
		journalID: journalID,
		logger:    logger,
	}
	if opts.Recorder != nil {
		m.Journals.WithRecorder(opts.Recorder)
		m.Balances.WithRecorder(opts.Recorder)
		m.Close.WithRecorder(opts.Recorder)
	}
	m.Hooks = integration.NewHooks(m.Journals, m.Mappings, journalID, logger)
	return m
}

// JournalID is the book used for closing entries and postings that name none.
func (m *Module) JournalID() int64 {
	return m.journalID
}
