// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger defines the key-value world state the voting contract runs on.

The contract never talks to a concrete backend. It sees a Store (Get, Put,
Scan) inside a transaction, and a transaction either commits all of its
writes or none of them:

	tx, err := database.Begin()
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err := tx.Put("Poll:42", data); err != nil {
		return err
	}
	return tx.Commit()

# Cursors

Scan returns a Cursor over a key prefix. Cursors hold backend resources and
must be closed on every path; Collect drains and closes one:

	cur, err := tx.Scan("Vote:42:")
	if err != nil {
		return err
	}
	err = ledger.Collect(cur, func(key string, value []byte) error {
		// decode and filter
		return nil
	})

# Backends

ledgerdb.Open selects a backend by type:

  - pebble: embedded Pebble database, see ledger/pebblestore
  - sqlite, postgres: world_state table, see package db

Inside a Fabric peer the chaincode package provides a Store over the chaincode
stub instead.
*/
package ledger
