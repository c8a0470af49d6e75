package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a jwt")

type SessionClaims struct {
	UserID string `json:"id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsFromToken reads claims without verifying the signature. The client
// never holds the signing key; it only needs exp and the subject to decide
// whether a persisted session is still worth trusting.
func ClaimsFromToken(tokenStr string) (*SessionClaims, error) {
	var claims SessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return &claims, nil
}

func (c *SessionClaims) ExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Sign issues an HS256 token; used by the backend double in tests and local tooling.
func Sign(claims SessionClaims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify parses an HS256 token and checks its signature and expiry.
func Verify(tokenStr string, secret []byte) (*SessionClaims, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return &claims, nil
}
