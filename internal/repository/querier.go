package repository

import (
	"context"
	"database/sql"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so a
// repository can run standalone or inside a unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
