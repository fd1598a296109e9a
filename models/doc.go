// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the ledger assets and the request/response types of the API.

# Ledger Assets

Assets are stored as JSON in the world state:

  - Participant: id, name, role (Voter, Organizer, Admin)
  - Poll: pollID, organizerID, ordered options, open/closed window
  - Vote: voteID, voterID, pollID, timestamp, selection (index into options)
  - Report: per-option tally, total, winner and tie flag

All assets are immutable once written.

# Roles

	RoleVoter     = "Voter"
	RoleOrganizer = "Organizer"
	RoleAdmin     = "Admin"

ParseRole accepts any casing and returns ErrInvalidRole otherwise.

# Timestamps

ParseTimestamp accepts the three formats clients historically sent:

	2030-01-02T15:04:05Z   RFC 3339
	2030-01-02             date, UTC midnight
	1893456000000          Unix milliseconds

# Request Types

  - CreateParticipantRequest: id, name, role
  - CreatePollRequest: options, open, closed
  - CastVoteRequest: selection
  - ValidateCodeRequest: code, state

# Response Types

  - AuthURLResponse: url
  - ValidateCodeResponse: email, token, expires_at
  - PollListResponse: polls
  - ErrorResponse: error, message
*/
package models
