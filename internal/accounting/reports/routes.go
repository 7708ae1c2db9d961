package reports

import (
	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/rbac"
)

// MountTrialBalance registers /trial-balance routes.
func (h *Handler) MountTrialBalance(r chi.Router, gate rbac.Middleware) {
	r.Use(gate.RequireAny(rbac.PermReportView))
	r.Get("/", h.TrialBalance)
	r.Get("/export", h.ExportTrialBalance)
}

// MountRoutes registers /reports routes.
func (h *Handler) MountRoutes(r chi.Router, gate rbac.Middleware) {
	r.Use(gate.RequireAny(rbac.PermReportView))
	r.Get("/profit-loss", h.ProfitAndLoss)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/financial-statements", h.FinancialStatements)
}
