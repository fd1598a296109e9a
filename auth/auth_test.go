// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"12 bytes", 12, 24},
		{"16 bytes", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestState(t *testing.T) {
	key := []byte("state-key")
	now := time.Unix(1_700_000_000, 0)

	state, err := SignState(key, now)
	if err != nil {
		t.Fatalf("SignState() error = %v", err)
	}

	tests := []struct {
		name  string
		state string
		key   []byte
		at    time.Time
		want  error
	}{
		{"valid", state, key, now.Add(time.Minute), nil},
		{"wrong key", state, []byte("other"), now, ErrInvalidState},
		{"tampered time", strings.Replace(state, ".1700000000.", ".1700000001.", 1), key, now, ErrInvalidState},
		{"garbage", "not-a-state", key, now, ErrInvalidState},
		{"expired", state, key, now.Add(StateTTL + time.Second), ErrExpiredState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyState(tt.state, tt.key, tt.at)
			if !errors.Is(err, tt.want) {
				t.Errorf("VerifyState() = %v, want %v", err, tt.want)
			}
		})
	}

	other, _ := SignState(key, now)
	if other == state {
		t.Error("SignState() should use a fresh nonce each time")
	}
}

func TestSessions(t *testing.T) {
	s, err := NewSessions("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	token, expires, err := s.Issue("alice@example.com", "alice@example.com", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("Issue() expires = %v, want %v", expires, now.Add(time.Hour))
	}

	claims, err := s.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.Email != "alice@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	other, _ := NewSessions("different", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired, _ := NewSessions("secret", -time.Minute)
	old, _, _ := expired.Issue("alice", "", now)
	if _, err := s.Validate(old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := s.Validate("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for garbage, got %v", err)
	}

	if _, err := NewSessions("", time.Hour); err == nil {
		t.Error("Expected an error for an empty secret")
	}
}

func TestSessionsRejectNone(t *testing.T) {
	s, _ := NewSessions("secret", time.Hour)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected unsigned token to be rejected, got %v", err)
	}
}

func idToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestOAuthExchange(t *testing.T) {
	var gotCode string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotCode = r.Form.Get("code")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken(t, jwt.MapClaims{"email": "Alice@Example.com", "email_verified": true}),
		})
	}))
	defer provider.Close()

	o := NewOAuth(OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: provider.URL + "/auth", TokenURL: provider.URL + "/token"},
	}, []byte("state-key"))

	now := time.Now()
	authURL, err := o.AuthURL(now)
	if err != nil {
		t.Fatalf("AuthURL() error = %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatal(err)
	}
	state := u.Query().Get("state")
	if u.Query().Get("client_id") != "client" || state == "" {
		t.Fatalf("Unexpected auth URL: %s", authURL)
	}

	email, err := o.Exchange(context.Background(), "the-code", state, now)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("Exchange() email = %q", email)
	}
	if gotCode != "the-code" {
		t.Errorf("Provider received code %q", gotCode)
	}

	if _, err := o.Exchange(context.Background(), "the-code", "forged.1.x", now); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestEmailFromIDToken(t *testing.T) {
	if _, err := emailFromIDToken(idToken(t, jwt.MapClaims{"sub": "1"})); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken without email, got %v", err)
	}
	unverified := idToken(t, jwt.MapClaims{"email": "a@b.c", "email_verified": false})
	if _, err := emailFromIDToken(unverified); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for unverified email, got %v", err)
	}
}

func TestOAuthNotConfigured(t *testing.T) {
	var o *OAuth = NewOAuth(OAuthConfig{}, nil)
	if _, err := o.AuthURL(time.Now()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
