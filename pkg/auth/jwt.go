package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Sub   int64  `json:"sub"`
	Email string `json:"email"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

const (
	ScopeMagicLink = "magic_link"
	ScopeSession   = "session"
)

func newToken(sub int64, email, scope, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:   sub,
		Email: email,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"leadgen-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// NewMagicLinkToken issues the short-lived credential embedded in a login
// link. Verification is signature plus expiry only; there is no server-side
// token registry.
func NewMagicLinkToken(accountID int64, email, secret string, ttl time.Duration) (string, error) {
	return newToken(accountID, email, ScopeMagicLink, secret, ttl)
}

// NewSessionToken issues the longer-lived credential handed out after a
// successful magic-link exchange.
func NewSessionToken(accountID int64, email, secret string, ttl time.Duration) (string, error) {
	return newToken(accountID, email, ScopeSession, secret, ttl)
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
