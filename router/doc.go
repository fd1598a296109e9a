// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the bitvote REST gateway.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{
		Gateway:  gw,
		Sessions: sessions,
		OAuth:    oauth,
		Gatherer: registry,
	})

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Sign-in (public):

	GET  /rest/issuer/auth-url      - Identity provider consent URL
	POST /rest/issuer/validate-code - Exchange code for a session token

Participants (session required):

	POST /rest/participants      - CreateParticipant
	GET  /rest/participants/me   - Caller's own record
	GET  /rest/participants/{id} - GetParticipant

Polls (session required):

	POST /rest/polls              - CreatePoll
	GET  /rest/polls              - ListPolls
	GET  /rest/polls/{id}         - GetPoll
	POST /rest/polls/{id}/votes   - CreateVote
	GET  /rest/polls/{id}/results - ReportResults

Session routes expect "Authorization: Bearer <token>" with a token from
validate-code. The token subject is the participant id the transaction is
submitted as.
*/
package router
