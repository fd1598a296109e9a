// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/bitvote/auth"
	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/handlers"
	"github.com/danielhkuo/bitvote/middleware"
)

// Deps are the services the routes are served from. OAuth may be nil when
// sign-in is not configured; Gatherer may be nil to leave out /metrics.
type Deps struct {
	Gateway  *gateway.Gateway
	Sessions *auth.Sessions
	OAuth    *auth.OAuth
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	participantHandler := handlers.NewParticipantHandler(d.Gateway)
	pollHandler := handlers.NewPollHandler(d.Gateway)
	votingHandler := handlers.NewVotingHandler(d.Gateway)
	resultsHandler := handlers.NewResultsHandler(d.Gateway)
	issuerHandler := handlers.NewIssuerHandler(d.OAuth, d.Sessions)

	session := middleware.RequireSession(d.Sessions)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	// Sign-in (public)
	mux.HandleFunc("GET /rest/issuer/auth-url", middleware.WithLogging(issuerHandler.AuthURL))
	mux.HandleFunc("POST /rest/issuer/validate-code", middleware.WithLogging(issuerHandler.ValidateCode))

	// Participants
	mux.HandleFunc("POST /rest/participants", middleware.WithLogging(session(participantHandler.CreateParticipant)))
	mux.HandleFunc("GET /rest/participants/me", middleware.WithLogging(session(participantHandler.GetMe)))
	mux.HandleFunc("GET /rest/participants/{id}", middleware.WithLogging(session(participantHandler.GetParticipant)))

	// Polls
	mux.HandleFunc("POST /rest/polls", middleware.WithLogging(session(pollHandler.CreatePoll)))
	mux.HandleFunc("GET /rest/polls", middleware.WithLogging(session(pollHandler.ListPolls)))
	mux.HandleFunc("GET /rest/polls/{id}", middleware.WithLogging(session(pollHandler.GetPoll)))

	// Voting and results
	mux.HandleFunc("POST /rest/polls/{id}/votes", middleware.WithLogging(session(votingHandler.CastVote)))
	mux.HandleFunc("GET /rest/polls/{id}/results", middleware.WithLogging(session(resultsHandler.GetResults)))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bitvote API v1"))
	})

	return mux
}
