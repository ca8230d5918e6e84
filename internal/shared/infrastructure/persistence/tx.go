package persistence

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
)

type sqlTxKey struct{}

// SQLTxInfo carries an open database/sql transaction through the context so
// repositories participate in the surrounding unit of work.
type SQLTxInfo struct {
	Tx *sql.Tx
}

// WithSQLTx stores a transaction in the context.
func WithSQLTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, sqlTxKey{}, &SQLTxInfo{Tx: tx})
}

// SQLTxFromContext retrieves the transaction from the context, if any.
func SQLTxFromContext(ctx context.Context) (*SQLTxInfo, bool) {
	info, ok := ctx.Value(sqlTxKey{}).(*SQLTxInfo)
	return info, ok
}

type pgxTxKey struct{}

// WithPgxTx stores a pgx transaction in the context.
func WithPgxTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, pgxTxKey{}, tx)
}

// PgxTxFromContext retrieves the pgx transaction from the context, if any.
func PgxTxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(pgxTxKey{}).(pgx.Tx)
	return tx, ok
}
