package repository

import (
	"context"
	"database/sql"
)

// DBTX is the unit-of-work handle every repository runs its statements on.
// It is either the shared pool (auto-committed statements) or a
// caller-supplied transaction, selected once via WithTx rather than by
// per-call branching.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
