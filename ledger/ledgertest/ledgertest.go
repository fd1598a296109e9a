// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledgertest holds the behaviour every ledger.Database must share.
package ledgertest

import (
	"errors"
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/danielhkuo/bitvote/ledger"
)

// TestTx checks read-your-writes, commit visibility and Discard semantics.
func TestTx(t *testing.T, database ledger.Database) {
	c := qt.New(t)

	tx, err := database.Begin()
	c.Assert(err, qt.IsNil)

	_, err = tx.Get("a")
	c.Assert(errors.Is(err, ledger.ErrKeyNotFound), qt.IsTrue)

	c.Assert(tx.Put("a", []byte("b")), qt.IsNil)

	v, err := tx.Get("a")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("b"))

	// not visible outside the transaction before commit
	_, err = database.Get("a")
	c.Assert(errors.Is(err, ledger.ErrKeyNotFound), qt.IsTrue)

	c.Assert(tx.Commit(), qt.IsNil)

	// Discard after Commit must be harmless, a second Commit must fail
	tx.Discard()
	c.Assert(errors.Is(tx.Commit(), ledger.ErrTxDone), qt.IsTrue)

	v, err = database.Get("a")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("b"))

	// overwrite in a new transaction
	tx, err = database.Begin()
	c.Assert(err, qt.IsNil)
	c.Assert(tx.Put("a", []byte("c")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	v, err = database.Get("a")
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("c"))
}

// TestDiscard checks that discarded writes never reach the database.
func TestDiscard(t *testing.T, database ledger.Database) {
	c := qt.New(t)

	tx, err := database.Begin()
	c.Assert(err, qt.IsNil)
	c.Assert(tx.Put("discarded", []byte("x")), qt.IsNil)
	tx.Discard()

	_, err = database.Get("discarded")
	c.Assert(errors.Is(err, ledger.ErrKeyNotFound), qt.IsTrue)

	_, err = tx.Get("discarded")
	c.Assert(errors.Is(err, ledger.ErrTxDone), qt.IsTrue)
	c.Assert(errors.Is(tx.Put("k", nil), ledger.ErrTxDone), qt.IsTrue)
}

// TestScan checks prefix bounds, ordering, and scans inside a transaction.
func TestScan(t *testing.T, database ledger.Database) {
	c := qt.New(t)

	const prefix0NumKeys, prefix1NumKeys = 12, 7

	tx, err := database.Begin()
	c.Assert(err, qt.IsNil)
	for i := 0; i < prefix0NumKeys; i++ {
		c.Assert(tx.Put(fmt.Sprintf("Vote:p0:%03d", i), []byte(fmt.Sprint(i))), qt.IsNil)
	}
	for i := 0; i < prefix1NumKeys; i++ {
		c.Assert(tx.Put(fmt.Sprintf("Vote:p1:%03d", i), []byte(fmt.Sprint(i))), qt.IsNil)
	}
	c.Assert(tx.Put("Poll:p0", []byte("{}")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	count := func(r ledger.Reader, prefix string) []string {
		cur, err := r.Scan(prefix)
		c.Assert(err, qt.IsNil)
		var keys []string
		err = ledger.Collect(cur, func(key string, _ []byte) error {
			keys = append(keys, key)
			return nil
		})
		c.Assert(err, qt.IsNil)
		return keys
	}

	c.Assert(count(database, ""), qt.HasLen, prefix0NumKeys+prefix1NumKeys+1)
	c.Assert(count(database, "Vote:"), qt.HasLen, prefix0NumKeys+prefix1NumKeys)
	c.Assert(count(database, "Vote:p1:"), qt.HasLen, prefix1NumKeys)
	c.Assert(count(database, "Vote:p2:"), qt.HasLen, 0)

	keys := count(database, "Vote:p0:")
	c.Assert(keys, qt.HasLen, prefix0NumKeys)
	c.Assert(keys[0], qt.Equals, "Vote:p0:000")
	c.Assert(keys[len(keys)-1], qt.Equals, fmt.Sprintf("Vote:p0:%03d", prefix0NumKeys-1))

	// uncommitted writes are visible to scans of the same transaction
	tx, err = database.Begin()
	c.Assert(err, qt.IsNil)
	defer tx.Discard()
	c.Assert(tx.Put("Vote:p1:999", []byte("x")), qt.IsNil)
	c.Assert(count(tx, "Vote:p1:"), qt.HasLen, prefix1NumKeys+1)
}

// TestCollectStops checks that a callback error stops the scan, is returned,
// and the cursor still gets released.
func TestCollectStops(t *testing.T, database ledger.Database) {
	c := qt.New(t)

	tx, err := database.Begin()
	c.Assert(err, qt.IsNil)
	for i := 0; i < 5; i++ {
		c.Assert(tx.Put(fmt.Sprintf("k%d", i), []byte("v")), qt.IsNil)
	}
	c.Assert(tx.Commit(), qt.IsNil)

	stop := errors.New("stop")
	seen := 0
	cur, err := database.Scan("k")
	c.Assert(err, qt.IsNil)
	err = ledger.Collect(cur, func(string, []byte) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	c.Assert(err, qt.Equals, stop)
	c.Assert(seen, qt.Equals, 2)

	// the database must still accept new transactions afterwards
	tx, err = database.Begin()
	c.Assert(err, qt.IsNil)
	c.Assert(tx.Put("after", []byte("v")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)
}

// Run runs every conformance test as a subtest.
func Run(t *testing.T, open func(t *testing.T) ledger.Database) {
	t.Run("Tx", func(t *testing.T) { TestTx(t, open(t)) })
	t.Run("Discard", func(t *testing.T) { TestDiscard(t, open(t)) })
	t.Run("Scan", func(t *testing.T) { TestScan(t, open(t)) })
	t.Run("CollectStops", func(t *testing.T) { TestCollectStops(t, open(t)) })
}
