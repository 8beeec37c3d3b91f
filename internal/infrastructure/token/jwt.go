// Package token implements the bearer token codec on top of HS256 JWTs.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasktrack/task-api/internal/core/domain"
)

// Claims is the payload carried by every token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTCodec signs and verifies tokens with a shared secret.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTCodec returns a codec signing with secret. A ttl <= 0 issues tokens
// without an exp claim, which stay valid until the secret changes.
func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	c := &JWTCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c
}

// Encode mints a token for userID.
func (c *JWTCodec) Encode(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("token: empty user id")
	}

	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies token and returns the user ID it carries.
func (c *JWTCodec) Decode(token string) (string, error) {
	if token == "" {
		return "", domain.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.UserID, nil
}
