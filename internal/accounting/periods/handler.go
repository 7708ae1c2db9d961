package periods

import (
	"log/slog"
	"net/http"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
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
	var status Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := ParseStatus(raw)
		if !ok {
			httpx.RespondError(w, r, h.logger, shared.Validationf("invalid status %q", raw))
			return
		}
		status = parsed
	}
	periods, err := h.service.List(r.Context(), status)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if periods == nil {
		periods = []Period{}
	}
	httpx.OK(w, http.StatusOK, periods)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	period, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, period)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	period, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusCreated, period)
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var in GenerateInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	created, err := h.service.GenerateYear(r.Context(), in.Year, in.Type)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusCreated, created)
}
