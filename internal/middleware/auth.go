package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/auth"
	"github.com/podcastify/podcastify-api/internal/respond"
)

// RevocationChecker reports whether a token id was revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const unauthorized = "unauthorized access"

// RequireAuth validates the bearer token and injects its claims into the
// request context. Every token failure answers the same 401.
func RequireAuth(tokens *auth.Tokens, revoked RevocationChecker, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, http.StatusUnauthorized, unauthorized)
				return
			}
			scheme, token, _ := strings.Cut(header, " ")
			if !strings.EqualFold(scheme, "Bearer") {
				respond.Error(w, http.StatusUnauthorized, unauthorized)
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, unauthorized)
				return
			}

			if jti := auth.TokenID(claims); jti != "" && revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), jti)
				if err != nil {
					respond.ServerError(w, r, log, "internal error", err)
					return
				}
				if isRevoked {
					respond.Error(w, http.StatusUnauthorized, unauthorized)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
