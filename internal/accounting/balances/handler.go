package balances

import (
	"log/slog"
	"net/http"

	"github.com/scholaris-erp/scholaris/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if rows == nil {
		rows = []Balance{}
	}
	httpx.OK(w, http.StatusOK, rows)
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RecalculateAll(r.Context()); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]string{"message": "Balances recalculated"})
}
