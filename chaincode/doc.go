// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chaincode runs the voting contract as Hyperledger Fabric chaincode.

VotingContract maps each contractapi transaction onto the contract package,
with the peer's world state behind a ledger.Store and the caller taken from
the client certificate:

  - CN=admin is the bootstrap Admin
  - any other identity needs "id" and "role" attributes

Identifiers are derived from the transaction id so every endorsing peer
produces the same write set. Successful writes set one of the
ParticipantCreated, PollCreated or VoteCast events.
*/
package chaincode
