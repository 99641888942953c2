package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// WithClaims attaches verified token claims to ctx.
func WithClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// ClaimsFromContext returns the claims stored by the auth gate, if any.
func ClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(jwt.MapClaims)
	return claims, ok
}

// TokenID returns the jti claim.
func TokenID(claims jwt.MapClaims) string {
	jti, _ := claims["jti"].(string)
	return jti
}
