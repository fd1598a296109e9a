// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledgerdb opens a ledger.Database by backend type.
package ledgerdb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/bitvote/db"
	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/ledger/pebblestore"
)

// Open returns the world state backend of the given type. url is a
// directory for pebble and a DSN for the SQL backends.
func Open(typ, url string) (ledger.Database, error) {
	switch typ {
	case ledger.TypePebble:
		return pebblestore.New(url)
	case ledger.TypeSQLite:
		return db.Open(db.DialectSQLite, url)
	case ledger.TypePostgres:
		return db.Open(db.DialectPostgres, url)
	default:
		return nil, fmt.Errorf("invalid database type: %q. Available types: %q %q %q",
			typ, ledger.TypePebble, ledger.TypeSQLite, ledger.TypePostgres)
	}
}

// NewTest opens a throwaway database of the given type in a temp dir,
// closed when the test ends.
func NewTest(tb testing.TB, typ string) ledger.Database {
	tb.Helper()

	url := tb.TempDir()
	if typ == ledger.TypeSQLite {
		url = "file:" + filepath.Join(url, "ledger.db")
	}

	database, err := Open(typ, url)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { database.Close() })
	return database
}
