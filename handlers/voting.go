// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/middleware"
	"github.com/danielhkuo/bitvote/models"
)

type VotingHandler struct {
	gw *gateway.Gateway
}

func NewVotingHandler(gw *gateway.Gateway) *VotingHandler {
	return &VotingHandler{gw: gw}
}

// CastVote handles POST /rest/polls/{id}/votes
// The vote is timestamped by the server, not the client.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// A missing selection becomes -1, which the contract rejects after the
	// role and poll checks.
	selection := -1
	if req.Selection != nil {
		selection = *req.Selection
	}

	vote, err := h.gw.CastVote(r.Context(), middleware.Subject(r.Context()), pollID, selection)
	if err != nil {
		transactionError(w, "CreateVote", err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, vote)
}
