package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris/internal/observability"
	"github.com/scholaris-erp/scholaris/internal/shared"
)

const testSecret = "unit-test-secret"

func TestAuthenticateAcceptsIssuedToken(t *testing.T) {
	token, err := IssueToken(testSecret, 42, []string{"ledger.period.close"}, time.Hour)
	require.NoError(t, err)

	actor, err := NewAuthenticator(testSecret, nil).Authenticate("Bearer " + token)
	require.NoError(t, err)
	require.Equal(t, int64(42), actor.ID)
	require.Equal(t, "42", actor.Subject)
	require.Equal(t, []string{"ledger.period.close"}, actor.Permissions)
}

func TestAuthenticateRejects(t *testing.T) {
	valid, err := IssueToken(testSecret, 7, nil, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, 7, nil, -time.Minute)
	require.NoError(t, err)
	otherSecret, err := IssueToken("another-secret", 7, nil, time.Hour)
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "teacher-7"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	auth := NewAuthenticator(testSecret, nil)
	cases := map[string]string{
		"missing header": "",
		"no bearer":      valid,
		"empty bearer":   "Bearer   ",
		"expired":        "Bearer " + expired,
		"wrong secret":   "Bearer " + otherSecret,
		"non-numeric":    "Bearer " + badSubject,
		"wrong alg":      "Bearer " + wrongAlg,
	}
	for name, header := range cases {
		_, err := auth.Authenticate(header)
		require.ErrorIs(t, err, shared.ErrUnauthenticated, name)
	}
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", 1, nil, time.Hour)
	require.Error(t, err)
}

func TestAuthenticatorMiddleware(t *testing.T) {
	auth := NewAuthenticator(testSecret, nil)
	var seen int64
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.ActorID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/periods", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)

	token, err := IssueToken(testSecret, 9, nil, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/periods", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int64(9), seen)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("LEDGER_RECALC_TIMEOUT", "45s")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 45*time.Second, cfg.LedgerRecalcTimeout)
	require.Equal(t, int64(1), cfg.LedgerClosingJournalID)
	require.Equal(t, "monthly", cfg.LedgerRolloverPeriodType)
	require.False(t, cfg.IsProduction())

	t.Setenv("LEDGER_CLOSING_JOURNAL_ID", "0")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLevel(&Config{LogLevel: "debug"}).String())
	require.Equal(t, "WARN", parseLevel(&Config{LogLevel: " Warning "}).String())
	require.Equal(t, "INFO", parseLevel(&Config{LogLevel: "verbose"}).String())
	require.Equal(t, "INFO", parseLevel(nil).String())
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger:        NewLogger(&Config{LogLevel: "error"}),
		Config:        &Config{AppRateLimit: 100},
		Authenticator: NewAuthenticator(testSecret, nil),
		Metrics:       observability.NewMetrics(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "scholaris_http_requests_total")
}
