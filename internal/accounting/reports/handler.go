package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// TrialBalance serves JSON, or CSV when format=csv.
func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		h.ExportTrialBalance(w, r)
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	tb, err := h.service.Generate(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, tb)
}

func (h *Handler) ExportTrialBalance(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	tb, err := h.service.Generate(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", CSVFilename(q)))
	if err := WriteTrialBalanceCSV(w, tb); err != nil {
		h.logger.Error("write trial balance csv", slog.Any("error", err))
	}
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	start, end, err := requireRange(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, pl)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := httpx.QueryDate(r, "as_of_date")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	date := h.now().UTC().Truncate(24 * time.Hour)
	if asOf != nil {
		date = *asOf
	}
	bs, err := h.service.BalanceSheet(r.Context(), date)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, bs)
}

func (h *Handler) FinancialStatements(w http.ResponseWriter, r *http.Request) {
	start, end, err := requireRange(r)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	fs, err := h.service.FinancialStatements(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, fs)
}

func parseQuery(r *http.Request) (Query, error) {
	asOf, err := httpx.QueryDate(r, "as_of_date")
	if err != nil {
		return Query{}, err
	}
	start, err := httpx.QueryDate(r, "start_date")
	if err != nil {
		return Query{}, err
	}
	end, err := httpx.QueryDate(r, "end_date")
	if err != nil {
		return Query{}, err
	}
	q := Query{AsOf: asOf, Start: start, End: end}
	return q, q.Validate()
}

func requireRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := httpx.QueryDate(r, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := httpx.QueryDate(r, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start == nil || end == nil {
		return time.Time{}, time.Time{}, shared.Validation("start_date and end_date are required")
	}
	return *start, *end, nil
}
