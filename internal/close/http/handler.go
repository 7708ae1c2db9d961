package closehttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris/internal/close"
	"github.com/scholaris-erp/scholaris/internal/platform/httpx"
	"github.com/scholaris-erp/scholaris/internal/rbac"
	"github.com/scholaris-erp/scholaris/internal/shared"
)

type closeService interface {
	GetClosingPreview(ctx context.Context, periodID int64) (close.Preview, error)
	ClosePeriod(ctx context.Context, periodID, actorID int64) (close.Result, error)
	ReopenPeriod(ctx context.Context, periodID, actorID int64) (close.ReopenResult, error)
}

// Handler exposes period closing under /periods/{id}.
type Handler struct {
	logger  *slog.Logger
	service closeService
	rbac    rbac.Middleware
}

// NewHandler builds a closing handler.
func NewHandler(logger *slog.Logger, service closeService, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers closing routes on the periods router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(rbac.PermPeriodView, rbac.PermPeriodClose)).Get("/{id}/preview", h.preview)
	r.With(h.rbac.RequireAll(rbac.PermPeriodClose)).Post("/{id}/close", h.closePeriod)
	r.With(h.rbac.RequireAll(rbac.PermPeriodReopen)).Post("/{id}/reopen", h.reopenPeriod)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	preview, err := h.service.GetClosingPreview(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, preview)
}

func (h *Handler) closePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	result, err := h.service.ClosePeriod(r.Context(), id, shared.ActorID(r.Context()))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, result)
}

func (h *Handler) reopenPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	result, err := h.service.ReopenPeriod(r.Context(), id, shared.ActorID(r.Context()))
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, result)
}
