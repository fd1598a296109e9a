// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package pebblestore implements ledger.Database on top of Pebble.
package pebblestore

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"

	"github.com/danielhkuo/bitvote/ledger"
)

// Tx implements ledger.Tx with an indexed batch, so reads inside the
// transaction observe its own uncommitted writes.
type Tx struct {
	batch *pebble.Batch
}

var _ ledger.Tx = (*Tx)(nil)

func get(reader pebble.Reader, key string) ([]byte, error) {
	v, closer, err := reader.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ledger.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	// The returned slice is only valid until closer.Close.
	out := make([]byte, len(v))
	copy(out, v)

	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func scan(reader pebble.Reader, prefix string) (ledger.Cursor, error) {
	opts := &pebble.IterOptions{}
	if prefix != "" {
		opts.LowerBound = []byte(prefix)
		if end := ledger.PrefixEnd(prefix); end != "" {
			opts.UpperBound = []byte(end)
		}
	}
	iter, err := reader.NewIter(opts)
	if err != nil {
		return nil, err
	}
	return &cursor{iter: iter}, nil
}

type cursor struct {
	iter    *pebble.Iterator
	started bool
	closed  bool
}

func (c *cursor) Next() bool {
	if c.closed {
		return false
	}
	if !c.started {
		c.started = true
		return c.iter.First()
	}
	return c.iter.Next()
}

func (c *cursor) Key() string   { return string(c.iter.Key()) }
func (c *cursor) Value() []byte { return c.iter.Value() }

func (c *cursor) Err() error {
	if c.closed {
		return nil
	}
	return c.iter.Error()
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.iter.Close()
}

// Get implements ledger.Reader.
func (tx *Tx) Get(key string) ([]byte, error) {
	if tx.batch == nil {
		return nil, ledger.ErrTxDone
	}
	return get(tx.batch, key)
}

// Scan implements ledger.Reader.
func (tx *Tx) Scan(prefix string) (ledger.Cursor, error) {
	if tx.batch == nil {
		return nil, ledger.ErrTxDone
	}
	return scan(tx.batch, prefix)
}

// Put implements ledger.Store.
func (tx *Tx) Put(key string, value []byte) error {
	if tx.batch == nil {
		return ledger.ErrTxDone
	}
	return tx.batch.Set([]byte(key), value, nil)
}

// Commit implements ledger.Tx.
func (tx *Tx) Commit() error {
	if tx.batch == nil {
		return ledger.ErrTxDone
	}
	err := tx.batch.Commit(pebble.Sync)
	tx.batch.Close()
	tx.batch = nil
	return err
}

// Discard implements ledger.Tx.
func (tx *Tx) Discard() {
	if tx.batch == nil {
		// Allowed after Commit so callers can always defer Discard.
		return
	}
	tx.batch.Close()
	tx.batch = nil
}

// DB implements ledger.Database.
type DB struct {
	db *pebble.DB
}

var _ ledger.Database = (*DB)(nil)

// New opens (creating if needed) a Pebble database in dir.
func New(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	opts := &pebble.Options{
		Levels: []pebble.LevelOptions{
			{Compression: pebble.SnappyCompression},
		},
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

// Get implements ledger.Reader.
func (d *DB) Get(key string) ([]byte, error) {
	return get(d.db, key)
}

// Scan implements ledger.Reader.
func (d *DB) Scan(prefix string) (ledger.Cursor, error) {
	return scan(d.db, prefix)
}

// Begin implements ledger.Database.
func (d *DB) Begin() (ledger.Tx, error) {
	return &Tx{batch: d.db.NewIndexedBatch()}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
