package db

import (
	"context"
	"fmt"
)

// The (title, due) pair is unique at the storage level so that concurrent
// creates cannot both succeed.
const (
	sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	due        TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (title, due)
)`

	postgresSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id         BIGSERIAL PRIMARY KEY,
	title      TEXT NOT NULL,
	due        DATE NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT todos_title_due_key UNIQUE (title, due)
)`
)

// EnsureSchema creates the todos table when it does not exist yet.
func (d *DB) EnsureSchema(ctx context.Context) error {
	schema := sqliteSchema
	if d.Driver == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := d.SQL.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}
