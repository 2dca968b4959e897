package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/cipherledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

// RelayClaimsContextKey is the context key for verified relay claims.
const RelayClaimsContextKey ContextKey = "relay_claims"

// TokenVerifier verifies relay bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.RelayClaims, error)
}

// RelayAuth rejects requests that do not carry a valid relay token.
func RelayAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorBody(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeErrorBody(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				msg := "invalid relay token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "relay token expired"
				}
				writeErrorBody(w, http.StatusUnauthorized, "UNAUTHORIZED", msg)
				return
			}

			ctx := context.WithValue(r.Context(), RelayClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RelayClaimsFromContext returns the verified relay claims, if any.
func RelayClaimsFromContext(ctx context.Context) (*auth.RelayClaims, bool) {
	claims, ok := ctx.Value(RelayClaimsContextKey).(*auth.RelayClaims)
	return claims, ok
}
