package accounting

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/accounting/accounts"
	"github.com/scholaris-erp/scholaris/internal/accounting/balances"
	"github.com/scholaris-erp/scholaris/internal/accounting/journals"
	"github.com/scholaris-erp/scholaris/internal/accounting/periods"
	"github.com/scholaris-erp/scholaris/internal/accounting/reports"
	closehttp "github.com/scholaris-erp/scholaris/internal/close/http"
	"github.com/scholaris-erp/scholaris/internal/rbac"
)

// Handler wires the ledger endpoints.
type Handler struct {
	gate     rbac.Middleware
	accounts *accounts.Handler
	journals *journals.Handler
	balances *balances.Handler
	periods  *periods.Handler
	close    *closehttp.Handler
	reports  *reports.Handler
}

// NewHandler builds the HTTP surface of m.
func NewHandler(logger *slog.Logger, m *Module, gate rbac.Middleware) *Handler {
	return &Handler{
		gate:     gate,
		accounts: accounts.NewHandler(logger, m.Accounts),
		journals: journals.NewHandler(logger, m.Journals, m.JournalID()),
		balances: balances.NewHandler(logger, m.Balances),
		periods:  periods.NewHandler(logger, m.Periods),
		close:    closehttp.NewHandler(logger, m.Close, gate),
		reports:  reports.NewHandler(logger, m.Reports),
	}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		h.accounts.MountRoutes(r, h.gate)
	})
	r.Route("/journal-entries", func(r chi.Router) {
		h.journals.MountRoutes(r, h.gate)
	})
	r.Route("/balances", func(r chi.Router) {
		h.balances.MountRoutes(r, h.gate)
	})
	r.Route("/periods", func(r chi.Router) {
		h.periods.MountRoutes(r, h.gate)
		h.close.MountRoutes(r)
	})
	r.Route("/trial-balance", func(r chi.Router) {
		h.reports.MountTrialBalance(r, h.gate)
	})
	r.Route("/reports", func(r chi.Router) {
		h.reports.MountRoutes(r, h.gate)
	})
}
