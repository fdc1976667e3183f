package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/irsalhamdi/course-market/config"
	"github.com/irsalhamdi/course-market/core/claims"
)

var ErrInvalidToken = errors.New("invalid or expired credentials")

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the bearer credentials of the API.
type Tokens struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg config.Auth) *Tokens {
	return &Tokens{
		key:    []byte(cfg.Key),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Token is what a client receives after logging in.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (t *Tokens) Issue(userID string, role string) (Token, error) {
	now := t.now().UTC()
	exp := now.Add(t.ttl)

	tc := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(t.key)
	if err != nil {
		return Token{}, fmt.Errorf("signing token: %w", err)
	}
	return Token{Token: s, ExpiresAt: exp}, nil
}

func (t *Tokens) Verify(s string) (claims.Claims, error) {
	var tc tokenClaims
	tok, err := jwt.ParseWithClaims(s, &tc, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil {
		return claims.Claims{}, fmt.Errorf("%v: %w", err, ErrInvalidToken)
	}

	if !tok.Valid || tc.Subject == "" || tc.Issuer != t.issuer {
		return claims.Claims{}, ErrInvalidToken
	}

	return claims.Claims{UserID: tc.Subject, Role: tc.Role}, nil
}
