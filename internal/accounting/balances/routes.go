package balances

import (
	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, gate rbac.Middleware) {
	r.With(gate.RequireAny(rbac.PermReportView)).Get("/", h.List)
	r.With(gate.RequireAll(rbac.PermPeriodClose)).Post("/recalculate", h.Recalculate)
}
