// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/bitvote/ledger"
)

// Store implements ledger.Database over a world_state table.
type Store struct {
	db *sql.DB
}

var _ ledger.Database = (*Store)(nil)

// Open connects to the database, verifies the connection and creates the
// schema. dialect is DialectSQLite or DialectPostgres.
func Open(dialect, dsn string) (*Store, error) {
	if dialect == DialectSQLite {
		dsn = sqlitePragmas(dsn)
	}

	conn, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	return &Store{db: conn}, nil
}

// sqlitePragmas enables WAL, so readers never block on the open write
// transaction, and a busy timeout for competing writers.
func sqlitePragmas(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func get(q querier, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRow(`SELECT value FROM world_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func scan(q querier, prefix string) (ledger.Cursor, error) {
	var (
		rows *sql.Rows
		err  error
	)
	end := ledger.PrefixEnd(prefix)
	switch {
	case prefix == "":
		rows, err = q.Query(`SELECT key, value FROM world_state ORDER BY key`)
	case end == "":
		rows, err = q.Query(`SELECT key, value FROM world_state WHERE key >= $1 ORDER BY key`, prefix)
	default:
		rows, err = q.Query(`
			SELECT key, value FROM world_state
			WHERE key >= $1 AND key < $2
			ORDER BY key
		`, prefix, end)
	}
	if err != nil {
		return nil, err
	}
	return &cursor{rows: rows}, nil
}

type cursor struct {
	rows  *sql.Rows
	key   string
	value []byte
	err   error
}

func (c *cursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	if err := c.rows.Scan(&c.key, &c.value); err != nil {
		c.err = err
		return false
	}
	return true
}

func (c *cursor) Key() string   { return c.key }
func (c *cursor) Value() []byte { return c.value }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *cursor) Close() error {
	return c.rows.Close()
}

// Get implements ledger.Reader.
func (s *Store) Get(key string) ([]byte, error) {
	return get(s.db, key)
}

// Scan implements ledger.Reader.
func (s *Store) Scan(prefix string) (ledger.Cursor, error) {
	return scan(s.db, prefix)
}

// Begin implements ledger.Database.
func (s *Store) Begin() (ledger.Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Tx implements ledger.Tx with a SQL transaction.
type Tx struct {
	tx   *sql.Tx
	done bool
}

var _ ledger.Tx = (*Tx)(nil)

func (t *Tx) Get(key string) ([]byte, error) {
	if t.done {
		return nil, ledger.ErrTxDone
	}
	return get(t.tx, key)
}

func (t *Tx) Scan(prefix string) (ledger.Cursor, error) {
	if t.done {
		return nil, ledger.ErrTxDone
	}
	return scan(t.tx, prefix)
}

func (t *Tx) Put(key string, value []byte) error {
	if t.done {
		return ledger.ErrTxDone
	}
	_, err := t.tx.Exec(`
		INSERT INTO world_state (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	return err
}

func (t *Tx) Commit() error {
	if t.done {
		return ledger.ErrTxDone
	}
	t.done = true
	return t.tx.Commit()
}

func (t *Tx) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.tx.Rollback()
}
