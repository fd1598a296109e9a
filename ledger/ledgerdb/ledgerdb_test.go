// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledgerdb

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/ledger/ledgertest"
)

func TestOpenUnknownType(t *testing.T) {
	_, err := Open("leveldb", t.TempDir())
	qt.Assert(t, err, qt.ErrorMatches, `invalid database type: "leveldb".*`)
}

func TestBackends(t *testing.T) {
	for _, typ := range []string{ledger.TypePebble, ledger.TypeSQLite} {
		t.Run(typ, func(t *testing.T) {
			ledgertest.Run(t, func(t *testing.T) ledger.Database {
				return NewTest(t, typ)
			})
		})
	}
}
