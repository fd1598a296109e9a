// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the bitvote REST gateway.

bitvote is a voting system whose state lives on a ledger: participants,
polls and votes are assets, and every change goes through a role-checked
contract transaction. This server is the gateway that submits those
transactions on behalf of signed-in users.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=./ledger SESSION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t sqlite -d "file:bitvote.db" -session-secret ...

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): Pebble directory or SQL DSN
  - SESSION_SECRET (-session-secret): Secret for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): pebble, sqlite or postgres (default: pebble)
  - ADMIN_ID (-admin): Subject treated as the bootstrap admin
  - OPEN_SIGNUP (-open-signup): Allow self registration as Voter or Organizer
  - GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, OAUTH_REDIRECT_URL: Sign-in
  - LOG_LEVEL (-log-level): debug, info, warn or error

# Architecture

  - contract: Transactions, role checks and key layout
  - ledger: World state interface with pebble, sqlite and postgres backends
  - gateway: Submits and evaluates transactions for authenticated subjects
  - chaincode: The same contract packaged for Hyperledger Fabric
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: Sessions, CORS, logging, metrics, JSON helpers
  - auth: Sign-in, OAuth state and session tokens
  - models: Assets and request/response types
  - cliparse: Configuration parsing

The chaincode binary lives in cmd/chaincode and the admin CLI in
cmd/bitvotectl.
*/
package main
