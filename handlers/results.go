// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/middleware"
)

type ResultsHandler struct {
	gw *gateway.Gateway
}

func NewResultsHandler(gw *gateway.Gateway) *ResultsHandler {
	return &ResultsHandler{gw: gw}
}

// GetResults handles GET /rest/polls/{id}/results
// Only organizers can tally a poll.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	report, err := h.gw.Results(r.Context(), middleware.Subject(r.Context()), pollID)
	if err != nil {
		transactionError(w, "ReportResults", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, report)
}
