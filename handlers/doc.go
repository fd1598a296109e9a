// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the bitvote REST gateway.

# Handler Types

Each handler is a struct over the gateway:

  - ParticipantHandler: participant registration and lookup
  - PollHandler: poll creation, listing and lookup
  - VotingHandler: vote casting
  - ResultsHandler: result reports
  - IssuerHandler: sign-in and session tokens

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(gw)

Apart from IssuerHandler, every handler expects middleware.RequireSession in
front of it and submits the transaction as the session subject.

# Status Codes

Contract errors map to HTTP statuses:

	ErrUnauthorized                      → 403
	ErrNotFound                          → 404
	ErrAlreadyExists, ErrAlreadyVoted    → 409
	ErrInvalidArgument, ErrInvalidSelection → 400
	ErrPollNotOpen, ErrPollClosed        → 422

Any other failure is logged and reported as 500 without details.

# Sign-in Flow

	GET  /rest/issuer/auth-url      → AuthURL (provider URL with signed state)
	POST /rest/issuer/validate-code → ValidateCode (returns a session token)

The session subject is the verified email address, so participants that
sign in this way are registered under their email.
*/
package handlers
