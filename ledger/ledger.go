// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"errors"
	"io"
)

// Supported world state backends
const (
	TypePebble   = "pebble"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// ErrKeyNotFound is returned by Get when a key has no value.
var ErrKeyNotFound = errors.New("key not found")

// ErrTxDone is returned when a transaction is used after Commit or Discard.
var ErrTxDone = errors.New("transaction already committed or discarded")

// Reader contains the read-only world state operations.
type Reader interface {
	// Get retrieves the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Scan returns a cursor over every key starting with prefix, in
	// lexicographic key order. The caller must Close the cursor.
	Scan(prefix string) (Cursor, error)
}

// Store is the world state as seen from inside a transaction.
type Store interface {
	Reader

	// Put sets the value of key, replacing any previous value.
	Put(key string, value []byte) error
}

// Cursor iterates over a Scan result.
//
// Key and Value are only valid until the next call to Next.
type Cursor interface {
	Next() bool
	Key() string
	Value() []byte
	Err() error
	Close() error
}

// Tx is an atomic unit of world state changes.
type Tx interface {
	Store

	// Commit applies every Put of the transaction. Calling Commit more
	// than once, or after Discard, returns ErrTxDone.
	Commit() error

	// Discard drops the transaction. It is safe to call after Commit,
	// which allows a deferred Discard on every path.
	Discard()
}

// Database is a world state backend. All methods are safe for concurrent use.
type Database interface {
	io.Closer
	Reader

	// Begin starts a new transaction.
	Begin() (Tx, error)
}

// Collect drains a cursor, calling fn for each entry, and always closes it.
// Iteration stops at the first error returned by fn.
func Collect(cur Cursor, fn func(key string, value []byte) error) (err error) {
	defer func() {
		if cerr := cur.Close(); err == nil {
			err = cerr
		}
	}()

	for cur.Next() {
		if err := fn(cur.Key(), cur.Value()); err != nil {
			return err
		}
	}
	return cur.Err()
}

// PrefixEnd returns the smallest key greater than every key with the given
// prefix, or "" when no such bound exists.
func PrefixEnd(prefix string) string {
	end := []byte(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return string(end[:i+1])
		}
	}
	return ""
}
