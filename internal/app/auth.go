package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scholaris-erp/scholaris/internal/platform/httpx"
	"github.com/scholaris-erp/scholaris/internal/shared"
)

// ActorClaims is the token body: sub carries the actor id, perms its permissions.
type ActorClaims struct {
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// Authenticator verifies HMAC bearer tokens and places the actor in context.
type Authenticator struct {
	secret []byte
	logger *slog.Logger
}

// NewAuthenticator builds an Authenticator for secret.
func NewAuthenticator(secret string, logger *slog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

// Middleware rejects requests without a valid token with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			if a.logger != nil {
				a.logger.Debug("authentication failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.RespondError(w, r, a.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// Authenticate parses an Authorization header value.
func (a *Authenticator) Authenticate(header string) (shared.Actor, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return shared.Actor{}, shared.ErrUnauthenticated
	}
	var claims ActorClaims
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return shared.Actor{}, fmt.Errorf("%w: invalid token", shared.ErrUnauthenticated)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return shared.Actor{}, fmt.Errorf("%w: invalid subject", shared.ErrUnauthenticated)
	}
	return shared.Actor{ID: id, Subject: claims.Subject, Permissions: claims.Permissions}, nil
}

// IssueToken signs a token for actorID, for operators and tests.
func IssueToken(secret string, actorID int64, perms []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("auth: secret required")
	}
	now := time.Now()
	claims := ActorClaims{
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(actorID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
