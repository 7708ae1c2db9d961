package periods

import (
	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, gate rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAny(rbac.PermPeriodView, rbac.PermPeriodManage))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAll(rbac.PermPeriodManage))
		r.Post("/", h.Create)
		r.Post("/generate", h.Generate)
	})
}
