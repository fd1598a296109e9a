// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Dialects understood by CreateSchema and Open.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// CreateSchema creates the world state table for the given dialect.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var schema string
	switch dialect {
	case DialectSQLite:
		schema = sqliteSchema
	case DialectPostgres:
		schema = postgresSchema
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Keys must sort bytewise for prefix scans, hence BINARY / "C" collation.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS world_state (
    key TEXT PRIMARY KEY COLLATE BINARY,
    value BLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS world_state (
    key TEXT COLLATE "C" PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
