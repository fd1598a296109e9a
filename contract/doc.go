// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package contract implements the voting transactions over a world state.

The same Contract runs in two hosts: the chaincode package, where state is
the Fabric ledger and the caller comes from the client certificate, and the
gateway package, where state is a local ledger.Database.

# Transactions

	CreateParticipant → Admin only
	GetParticipant    → self, or Admin for anyone
	CreatePoll        → Organizer only
	GetPoll/ListPolls → any registered participant
	CreateVote        → Voter only, once per poll, within the poll window
	ReportResults     → Organizer only

Role checks always run before argument validation, so an unauthorized caller
learns nothing about the arguments it passed.

# Keys

	Participant:<id>
	Poll:<pollID>
	Vote:<pollID>:<voteID>

# Errors

Failures wrap one of the sentinel errors (ErrUnauthorized, ErrNotFound,
ErrPollClosed, ...) and should be tested with errors.Is.
*/
package contract
