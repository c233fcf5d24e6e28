// Package token issues and verifies HS256 signed bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.TokenIssuer = JWT{}

type claims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration) (JWT, error) {
	const op = "NewJWT"

	if secret == "" {
		return JWT{}, fmt.Errorf("%s: empty secret", op)
	}
	if ttl <= 0 {
		return JWT{}, fmt.Errorf("%s: non-positive ttl %s", op, ttl)
	}
	return JWT{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j JWT) Issue(p domain.Principal) (string, error) {
	const op = "JWT.Issue"

	now := j.now()
	c := claims{
		UserID:  p.UserID,
		Email:   p.Email,
		IsAdmin: p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Verify checks the signature and expiry of token. Every failure matches
// [domain.ErrInvalidToken].
func (j JWT) Verify(token string) (domain.Principal, error) {
	const op = "JWT.Verify"

	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf(
			"%s: %w", op, errors.Join(domain.ErrInvalidToken, err),
		)
	}
	if c.UserID == "" {
		return domain.Principal{}, fmt.Errorf(
			"%s: %w: missing userId", op, domain.ErrInvalidToken,
		)
	}

	return domain.Principal{UserID: c.UserID, Email: c.Email, IsAdmin: c.IsAdmin}, nil
}
