package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 5 * time.Hour

// ErrUnauthorized is returned for every verification failure; callers get no reason.
var ErrUnauthorized = errors.New("unauthorized")

// Tokens issues and verifies HS256 bearer tokens signed with a server-held secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs claims after stamping exp, iat and a fresh jti. Caller-supplied
// values for those three are overwritten.
func (t *Tokens) Issue(claims map[string]interface{}) (string, error) {
	now := t.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(t.ttl))
	mc["jti"] = uuid.NewString()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(t.secret)
}

// Verify checks signature and expiry and returns the decoded claims.
func (t *Tokens) Verify(token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// TTL is the lifetime given to issued tokens.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Remaining returns how long the token behind claims stays valid.
func (t *Tokens) Remaining(claims jwt.MapClaims) time.Duration {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Sub(t.now())
}
