package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/scholaris-erp/scholaris/internal/accounting/shared"
	"github.com/scholaris-erp/scholaris/internal/shared"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", fmt.Errorf("close: %w", ledger.ErrPeriodAlreadyClosed), http.StatusBadRequest, "validation_error", "Period is already closed"},
		{"not found", ledger.ErrPeriodNotFound, http.StatusNotFound, "not_found", "accounting period not found"},
		{"configuration", ledger.ErrClosingAccountsMissing, http.StatusInternalServerError, "configuration_error", ledger.ErrClosingAccountsMissing.Message},
		{"transaction", ledger.Transaction(errors.New("pq: deadlock detected")), http.StatusInternalServerError, "transaction_error", "transaction failed"},
		{"timeout", ledger.Timeout(errors.New("statement timeout")), http.StatusGatewayTimeout, "timeout", "operation timed out"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "forbidden", "permission denied"},
		{"unknown", errors.New("secret dsn leaked"), http.StatusInternalServerError, "internal_error", "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, httptest.NewRequest(http.MethodGet, "/", nil), nil, tc.err)
			assert.Equal(t, tc.status, rr.Code)
			env := decodeEnvelope(t, rr)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Error)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestTransactionErrorDoesNotLeakDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, nil, nil, ledger.Transaction(errors.New("password=hunter2")))
	assert.NotContains(t, rr.Body.String(), "hunter2")
}

type createRequest struct {
	Code string `json:"code" validate:"required"`
	Type string `json:"type" validate:"required,oneof=asset liability"`
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":"equity"}`))
	var body createRequest
	err := DecodeAndValidate(req, &body)
	require.Error(t, err)
	assert.True(t, ledger.IsValidation(err))
	assert.Contains(t, err.Error(), "code is required")
	assert.Contains(t, err.Error(), "type must be one of [asset liability]")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"1000","unknown":1}`))
	err = DecodeAndValidate(req, &body)
	assert.True(t, ledger.IsValidation(err))
}

func TestOKEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, http.StatusCreated, map[string]int{"id": 7})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":7}}`, rr.Body.String())
}
