// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/bitvote/auth"
	"github.com/danielhkuo/bitvote/middleware"
	"github.com/danielhkuo/bitvote/models"
)

// IssuerHandler signs participants in with the identity provider and issues
// session tokens.
type IssuerHandler struct {
	oauth    *auth.OAuth
	sessions *auth.Sessions
	now      func() time.Time
}

func NewIssuerHandler(oauth *auth.OAuth, sessions *auth.Sessions) *IssuerHandler {
	return &IssuerHandler{oauth: oauth, sessions: sessions, now: time.Now}
}

// AuthURL handles GET /rest/issuer/auth-url
func (h *IssuerHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.oauth.AuthURL(h.now())
	if errors.Is(err, auth.ErrNotConfigured) {
		middleware.ErrorResponse(w, http.StatusNotImplemented, "Sign-in is not configured")
		return
	}
	if err != nil {
		slog.Error("failed to build auth url", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build auth URL")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AuthURLResponse{URL: url})
}

// ValidateCode handles POST /rest/issuer/validate-code
// The participant id of the session is the verified email address.
func (h *IssuerHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Code == "" || req.State == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code and state are required")
		return
	}

	now := h.now()
	email, err := h.oauth.Exchange(r.Context(), req.Code, req.State, now)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		middleware.ErrorResponse(w, http.StatusNotImplemented, "Sign-in is not configured")
		return
	case errors.Is(err, auth.ErrInvalidState), errors.Is(err, auth.ErrExpiredState), errors.Is(err, auth.ErrInvalidToken):
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		slog.Warn("code exchange failed", "error", err, "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusBadGateway, "Identity provider rejected the code")
		return
	}

	token, expires, err := h.sessions.Issue(email, email, now)
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue session")
		return
	}

	slog.Info("session issued", "subject", email)
	middleware.JSONResponse(w, http.StatusOK, models.ValidateCodeResponse{
		Email:     email,
		Token:     token,
		ExpiresAt: expires,
	})
}
