package db

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS rooms (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	price NUMERIC(10,2) NOT NULL DEFAULT 0,
	num_seats INTEGER NOT NULL CHECK (num_seats > 0),
	room_type TEXT NOT NULL CHECK (room_type IN ('room', 'sharedSpace')),
	availability BOOLEAN NOT NULL DEFAULT TRUE,
	thumbnail TEXT,
	images JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reservations (
	id SERIAL PRIMARY KEY,
	room_id INTEGER NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	start_time TIME NOT NULL,
	end_time TIME NOT NULL,
	num_seats INTEGER,
	type TEXT NOT NULL CHECK (type IN ('room', 'sharedSpace')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (end_time > start_time),
	CHECK ((type = 'sharedSpace') = (num_seats IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_reservations_room_date ON reservations(room_id, date);

CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema. Statements are idempotent so this runs on
// every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
