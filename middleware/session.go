// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielhkuo/bitvote/auth"
)

type contextKey struct{}

// SessionValidator checks a bearer token. *auth.Sessions implements it.
type SessionValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// WithSubject returns a copy of ctx carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKey{}, subject)
}

// Subject returns the subject stored by RequireSession, or "".
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(contextKey{}).(string)
	return s
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// session token and stores the token subject in the request context.
func RequireSession(sessions SessionValidator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				ErrorResponse(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			next(w, r.WithContext(WithSubject(r.Context(), claims.Subject)))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
