package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/persistence"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteRepository) querier(ctx context.Context) sqlQuerier {
	if info, ok := persistence.SQLTxFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	q := r.querier(ctx)
	res, err := q.ExecContext(ctx, `
		INSERT INTO outbox_messages (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		msg.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	msg.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	q := r.querier(ctx)
	rows, err := q.QueryContext(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, created_at, retry_count, last_error
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`,
		time.Now().UTC().Format(time.RFC3339Nano), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]*Message, 0)
	for rows.Next() {
		var (
			msg       Message
			eventID   string
			aggID     string
			payload   string
			createdAt string
			lastError sql.NullString
		)
		if err := rows.Scan(&msg.ID, &eventID, &msg.AggregateType, &aggID, &msg.EventType, &msg.RoutingKey, &payload, &createdAt, &msg.RetryCount, &lastError); err != nil {
			return nil, err
		}
		msg.EventID, _ = uuid.Parse(eventID)
		msg.AggregateID, _ = uuid.Parse(aggID)
		msg.Payload = []byte(payload)
		msg.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if lastError.Valid {
			msg.LastError = &lastError.String
		}
		msgs = append(msgs, &msg)
	}
	return msgs, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	q := r.querier(ctx)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox_messages SET published_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	q := r.querier(ctx)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox_messages SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, nextRetryAt.UTC().Format(time.RFC3339Nano), id,
	)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	q := r.querier(ctx)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox_messages SET dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), reason, id,
	)
	return err
}

func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	q := r.querier(ctx)
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := q.ExecContext(ctx,
		`DELETE FROM outbox_messages WHERE published_at IS NOT NULL AND published_at < ?`,
		cutoff.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
