// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, client IP and duration_ms on completion, and
counts the request in bitvote_http_requests_total under its route pattern.
Call RegisterMetrics once to expose the HTTP collectors.

# Sessions

Protect a handler with a bearer session token:

	requireSession := middleware.RequireSession(sessions)
	mux.HandleFunc("GET /rest/polls", requireSession(handler))

Inside the handler, the authenticated participant id is available with
middleware.Subject(r.Context()).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, OPTIONS with headers Content-Type and Authorization.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP before falling back to RemoteAddr.
*/
package middleware
