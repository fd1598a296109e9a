// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultSessionTTL is the lifetime of a session token.
const DefaultSessionTTL = 12 * time.Hour

const issuer = "bitvote"

// Claims are carried by a session token. The subject is the participant id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and validates HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret required")
	}
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl}, nil
}

// Secret returns the signing key, reused to sign OAuth state.
func (s *Sessions) Secret() []byte { return s.secret }

// Issue creates a token for subject, valid from now for the session TTL.
func (s *Sessions) Issue(subject, email string, now time.Time) (string, time.Time, error) {
	expires := now.Add(s.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, expires, nil
}

// Validate parses a token, checking its signature, issuer and expiry.
func (s *Sessions) Validate(token string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Issuer != issuer || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
