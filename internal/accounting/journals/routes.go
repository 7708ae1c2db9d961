package journals

import (
	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, gate rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAny(rbac.PermJournalView, rbac.PermJournalPost))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
		r.Get("/account/{accountID}", h.ForAccount)
	})
	r.With(gate.RequireAll(rbac.PermJournalPost)).Post("/", h.Create)
}
