// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db stores the ledger world state in a SQL database.

# Opening

Open connects, pings and creates the schema:

	store, err := db.Open(db.DialectSQLite, "file:ledger.db")
	store, err := db.Open(db.DialectPostgres, "postgres://...")

The returned Store implements ledger.Database.

# Schema Creation

CreateSchema initializes the single world_state table. Safe to call multiple
times - uses IF NOT EXISTS.

	world_state(key TEXT PRIMARY KEY, value BLOB/BYTEA, updated_at TIMESTAMP)

Keys use a bytewise collation (BINARY on SQLite, "C" on PostgreSQL) so that
prefix scans return the same order as the Pebble backend.

# Transactions

Begin wraps a *sql.Tx. Put is an upsert; Discard rolls back and is a no-op
after Commit.
*/
package db
