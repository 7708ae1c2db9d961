package journals

import (
	"log/slog"
	"net/http"

	"github.com/scholaris-erp/scholaris/internal/platform/httpx"
	internalShared "github.com/scholaris-erp/scholaris/internal/shared"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	journalID int64
}

// NewHandler builds the journal entry handler. journalID is the book used when
// a request does not name one.
func NewHandler(logger *slog.Logger, service *Service, journalID int64) *Handler {
	return &Handler{logger: logger, service: service, journalID: journalID}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := httpx.QueryInt64(r, "account_id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	start, err := httpx.QueryDate(r, "start_date")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	end, err := httpx.QueryDate(r, "end_date")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	page, perPage := internalShared.PageFromQuery(r.URL.Query())
	result, err := h.service.List(r.Context(), ListFilter{AccountID: accountID, Start: start, End: end, Page: page, PerPage: perPage})
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, result)
}

// ForAccount lists every entry touching one account, unpaginated.
func (h *Handler) ForAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := httpx.IDParam(r, "accountID")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	start, err := httpx.QueryDate(r, "start_date")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	end, err := httpx.QueryDate(r, "end_date")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	entries, err := h.service.GetEntriesForAccount(r.Context(), accountID, start, end)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.OK(w, http.StatusOK, entries)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateEntryInput
	if err := httpx.DecodeAndValidate(r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	draft, err := in.Draft(h.journalID)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), draft)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.OK(w, http.StatusCreated, entry)
}
