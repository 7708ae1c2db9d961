package accounts

import (
	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/rbac"
)

func (h *Handler) MountRoutes(r chi.Router, gate rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAny(rbac.PermAccountView, rbac.PermAccountManage))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAll(rbac.PermAccountManage))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/deactivate", h.Deactivate)
		r.Delete("/{id}", h.Delete)
	})
}
