// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gateway relays REST and CLI requests to the voting contract.

A Gateway owns a ledger.Database and runs every contract operation in its
own transaction. Submitted transactions (CreateParticipant, CreatePoll,
CreateVote) hold a lock for their whole duration, so the duplicate-vote
check and the vote insert cannot interleave with another vote. Evaluated
transactions (GetParticipant, GetPoll, ListPolls, ReportResults) never
commit.

# Identity

Requests carry an authenticated subject. The configured admin subject is
the Admin; every other subject must be a registered participant and takes
its role from the ledger. Resolved participants are cached.

	gw, err := gateway.New(db, gateway.Options{AdminID: "admin"})
	poll, err := gw.CreatePoll(ctx, "org1", []string{"yes", "no"}, open, closed)
	vote, err := gw.CastVote(ctx, "alice", poll.ID, 0)
*/
package gateway
