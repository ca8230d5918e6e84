package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoTransaction = errors.New("no transaction in context")

// SQLUnitOfWork implements application.UnitOfWork over a database/sql
// connection (SQLite in local mode).
type SQLUnitOfWork struct {
	db *sql.DB
}

// NewSQLUnitOfWork creates a unit of work backed by database/sql transactions.
func NewSQLUnitOfWork(db *sql.DB) *SQLUnitOfWork {
	return &SQLUnitOfWork{db: db}
}

func (u *SQLUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return WithSQLTx(ctx, tx), nil
}

func (u *SQLUnitOfWork) Commit(ctx context.Context) error {
	info, ok := SQLTxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	return info.Tx.Commit()
}

func (u *SQLUnitOfWork) Rollback(ctx context.Context) error {
	info, ok := SQLTxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	return info.Tx.Rollback()
}

// PgxUnitOfWork implements application.UnitOfWork over a pgx pool.
type PgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewPgxUnitOfWork creates a unit of work backed by pgx transactions.
func NewPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{pool: pool}
}

func (u *PgxUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return WithPgxTx(ctx, tx), nil
}

func (u *PgxUnitOfWork) Commit(ctx context.Context) error {
	tx, ok := PgxTxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	return tx.Commit(ctx)
}

func (u *PgxUnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := PgxTxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}
	return tx.Rollback(ctx)
}
