// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	ledger "github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/shared"
)

// Sentinel errors for transport-level failures.
var (
	ErrBadRequest = errors.New("bad request")
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindTimeout:
		return http.StatusGatewayTimeout
	case ledger.KindConfiguration, ledger.KindTransaction:
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the failure envelope for err. Server-side failures are
// logged with full detail; clients only receive the classified message.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)
	kind := ledger.KindOf(err)
	message := ledger.MessageOf(err)
	if kind == "" {
		switch status {
		case http.StatusBadRequest:
			kind, message = ledger.KindValidation, err.Error()
		case http.StatusNotFound:
			kind, message = ledger.KindNotFound, err.Error()
		case http.StatusUnauthorized:
			kind, message = "unauthorized", err.Error()
		case http.StatusForbidden:
			kind, message = "forbidden", err.Error()
		default:
			kind, message = "internal_error", http.StatusText(http.StatusInternalServerError)
		}
	}
	if status >= http.StatusInternalServerError && logger != nil {
		attrs := []any{slog.String("kind", string(kind)), slog.Any("error", err)}
		if r != nil {
			attrs = append(attrs, slog.String("method", r.Method), slog.String("path", r.URL.Path))
		}
		logger.Error("request failed", attrs...)
	}
	Fail(w, status, string(kind), message)
}
