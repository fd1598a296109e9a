// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"github.com/danielhkuo/bitvote/auth"
	"github.com/danielhkuo/bitvote/models"
	"github.com/danielhkuo/bitvote/testutil"
)

// fakeProvider answers token requests with an ID token for email.
func fakeProvider(t *testing.T, email string) *httptest.Server {
	t.Helper()
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":          email,
		"email_verified": true,
	}).SignedString([]byte("provider"))
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newIssuer(t *testing.T, provider *httptest.Server) (*IssuerHandler, *auth.Sessions) {
	t.Helper()
	sessions := testutil.TestSessions(t, testutil.GetTestConfig())
	oauth := auth.NewOAuth(auth.OAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3000/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: provider.URL + "/auth", TokenURL: provider.URL + "/token"},
	}, sessions.Secret())
	return NewIssuerHandler(oauth, sessions), sessions
}

func TestIssuerSignIn(t *testing.T) {
	handler, sessions := newIssuer(t, fakeProvider(t, "Voter@Example.com"))

	w := httptest.NewRecorder()
	handler.AuthURL(w, testutil.MakeRequest("GET", "/rest/issuer/auth-url", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var urlResp models.AuthURLResponse
	testutil.AssertJSON(t, w, &urlResp)
	u, err := url.Parse(urlResp.URL)
	if err != nil {
		t.Fatal(err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatalf("Auth URL has no state: %s", urlResp.URL)
	}

	body := models.ValidateCodeRequest{Code: "good-code", State: state}
	w = httptest.NewRecorder()
	handler.ValidateCode(w, testutil.MakeRequest("POST", "/rest/issuer/validate-code", body, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ValidateCodeResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Email != "voter@example.com" {
		t.Errorf("Expected normalized email, got %q", resp.Email)
	}

	claims, err := sessions.Validate(resp.Token)
	if err != nil {
		t.Fatalf("Issued token does not validate: %v", err)
	}
	if claims.Subject != "voter@example.com" {
		t.Errorf("Expected subject to be the email, got %q", claims.Subject)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Errorf("Expected expiry in the future, got %v", resp.ExpiresAt)
	}
}

func TestValidateCodeErrors(t *testing.T) {
	handler, _ := newIssuer(t, fakeProvider(t, "voter@example.com"))
	state, err := auth.SignState(handler.sessions.Secret(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	stale, err := auth.SignState(handler.sessions.Secret(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{"missing code", models.ValidateCodeRequest{State: state}, http.StatusBadRequest},
		{"missing state", models.ValidateCodeRequest{Code: "good-code"}, http.StatusBadRequest},
		{"forged state", models.ValidateCodeRequest{Code: "good-code", State: "abc.1.def"}, http.StatusUnauthorized},
		{"expired state", models.ValidateCodeRequest{Code: "good-code", State: stale}, http.StatusUnauthorized},
		{"provider rejects code", models.ValidateCodeRequest{Code: "bad-code", State: state}, http.StatusBadGateway},
		{"invalid JSON", "not json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ValidateCode(w, testutil.MakeRequest("POST", "/rest/issuer/validate-code", tt.requestBody, nil))
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestIssuerNotConfigured(t *testing.T) {
	sessions := testutil.TestSessions(t, testutil.GetTestConfig())
	handler := NewIssuerHandler(auth.NewOAuth(auth.OAuthConfig{}, nil), sessions)

	w := httptest.NewRecorder()
	handler.AuthURL(w, testutil.MakeRequest("GET", "/rest/issuer/auth-url", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotImplemented)

	body := models.ValidateCodeRequest{Code: "c", State: "s"}
	w = httptest.NewRecorder()
	handler.ValidateCode(w, testutil.MakeRequest("POST", "/rest/issuer/validate-code", body, nil))
	testutil.AssertStatus(t, w, http.StatusNotImplemented)
}
