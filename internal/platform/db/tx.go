package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// Conn is the subset of pgx operations shared by pools, pooled connections
// and transactions. Repositories accept whichever the context carries.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// WithConn returns a context carrying conn. Repositories prefer the carried
// connection over their pool, which routes statements through an open
// transaction when one is in flight.
func WithConn(ctx context.Context, conn Conn) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// ConnFromContext retrieves the connection placed by WithConn, or nil.
func ConnFromContext(ctx context.Context) Conn {
	conn, _ := ctx.Value(connKey).(Conn)
	return conn
}

// InTx runs fn inside a transaction. The transaction is injected into the
// context so repository calls made by fn share it. Rollback on error,
// commit otherwise.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(WithConn(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
