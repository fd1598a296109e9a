// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/bitvote/contract"
	"github.com/danielhkuo/bitvote/middleware"
)

// statusFor maps a contract error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, contract.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, contract.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contract.ErrAlreadyExists), errors.Is(err, contract.ErrAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, contract.ErrInvalidArgument), errors.Is(err, contract.ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, contract.ErrPollNotOpen), errors.Is(err, contract.ErrPollClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// transactionError writes the response for a failed transaction. Contract
// errors are reported to the client; anything else is logged and hidden.
func transactionError(w http.ResponseWriter, fn string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("transaction failed", "fn", fn, "error", err)
		middleware.ErrorResponse(w, status, "Ledger error")
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}
