// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/bitvote/contract"
	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/middleware"
	"github.com/danielhkuo/bitvote/models"
)

type PollHandler struct {
	gw *gateway.Gateway
}

func NewPollHandler(gw *gateway.Gateway) *PollHandler {
	return &PollHandler{gw: gw}
}

// CreatePoll handles POST /rest/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	subject := middleware.Subject(r.Context())
	open, closed, err := parseWindow(req)
	if err != nil {
		// The caller's role is reported ahead of malformed input.
		if authErr := h.gw.Authorize(subject, contract.CreatePolls); authErr != nil {
			transactionError(w, "CreatePoll", authErr)
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	poll, err := h.gw.CreatePoll(r.Context(), subject, req.Options, open, closed)
	if err != nil {
		transactionError(w, "CreatePoll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

func parseWindow(req models.CreatePollRequest) (open, closed time.Time, err error) {
	if open, err = models.ParseTimestamp(req.Open); err != nil {
		return open, closed, fmt.Errorf("open: %w", err)
	}
	if closed, err = models.ParseTimestamp(req.Closed); err != nil {
		return open, closed, fmt.Errorf("closed: %w", err)
	}
	return open, closed, nil
}

// ListPolls handles GET /rest/polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.gw.Polls(r.Context(), middleware.Subject(r.Context()))
	if err != nil {
		transactionError(w, "ListPolls", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{Polls: polls})
}

// GetPoll handles GET /rest/polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	poll, err := h.gw.Poll(r.Context(), middleware.Subject(r.Context()), pollID)
	if err != nil {
		transactionError(w, "GetPoll", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}
