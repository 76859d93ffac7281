// Package token encodes and decodes the signed session token that
// proves a logged-in identity without server-side state.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigning reports a signing failure. Under a correctly configured
// secret this never happens; callers treat it as an internal fault.
var ErrSigning = errors.New("session token signing failed")

// Claims is the identity payload carried by a session token.
type Claims struct {
	UserID   int64
	Username string
	Email    string
}

type sessionClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a process-wide symmetric
// secret injected at construction.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: secret must not be empty")
	}
	return &Codec{secret: secret}, nil
}

// Encode produces a compact HS256 token expiring at now+ttl.
func (c *Codec) Encode(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	payload := sessionClaims{
		Username: claims.Username,
		Email:    claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return signed, nil
}

// Decode verifies tokenStr and returns its claims. It fails closed: a
// bad signature, malformed structure, or elapsed expiry all come back
// as (nil, false) with no way to tell the cases apart.
func (c *Codec) Decode(tokenStr string) (*Claims, bool) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, false
	}

	return &Claims{
		UserID:   userID,
		Username: claims.Username,
		Email:    claims.Email,
	}, true
}
