package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Satisfied by *pgxpool.Pool and pgx.Tx, so repositories work the same
// inside and outside a transaction
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
