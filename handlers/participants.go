// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/middleware"
	"github.com/danielhkuo/bitvote/models"
)

type ParticipantHandler struct {
	gw *gateway.Gateway
}

func NewParticipantHandler(gw *gateway.Gateway) *ParticipantHandler {
	return &ParticipantHandler{gw: gw}
}

// CreateParticipant handles POST /rest/participants
func (h *ParticipantHandler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.gw.RegisterParticipant(r.Context(), middleware.Subject(r.Context()), req.ID, req.Name, req.Role)
	if err != nil {
		transactionError(w, "CreateParticipant", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, p)
}

// GetMe handles GET /rest/participants/me
func (h *ParticipantHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	subject := middleware.Subject(r.Context())
	h.respond(w, r, subject)
}

// GetParticipant handles GET /rest/participants/{id}
func (h *ParticipantHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}
	h.respond(w, r, id)
}

func (h *ParticipantHandler) respond(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.gw.Participant(r.Context(), middleware.Subject(r.Context()), id)
	if err != nil {
		transactionError(w, "GetParticipant", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}
