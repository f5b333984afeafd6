package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Supported drivers. The sqlite name is registered by modernc.org/sqlite.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    flags INTEGER NOT NULL DEFAULT 0 CHECK (flags >= 0),
    stats TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS scores (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    flags INTEGER NOT NULL DEFAULT 0 CHECK (flags >= 0),
    stats TEXT NOT NULL
);
`

// CreateSchema creates the scores table for driver.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
