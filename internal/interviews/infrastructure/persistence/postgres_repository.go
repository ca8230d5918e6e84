package persistence

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedDomain "github.com/hiresync/hiresync/internal/shared/domain"
	sharedPersistence "github.com/hiresync/hiresync/internal/shared/infrastructure/persistence"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresProgressionRepository implements domain.ProgressionRepository
// using PostgreSQL via pgx.
type PostgresProgressionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProgressionRepository creates a new Postgres progression
// repository.
func NewPostgresProgressionRepository(pool *pgxpool.Pool) *PostgresProgressionRepository {
	return &PostgresProgressionRepository{pool: pool}
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PostgresProgressionRepository) querier(ctx context.Context) pgxQuerier {
	if tx, ok := sharedPersistence.PgxTxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

var progressionSelectColumns = []string{
	"id", "job_id", "candidate_id", "candidate_name", "candidate_email", "job_role",
	"completed_rounds", "next_round_index", "status", "current_round_scheduled",
	"created_at", "updated_at",
}

// Save upserts the progression and rewrites its rounds.
func (r *PostgresProgressionRepository) Save(ctx context.Context, progression *domain.Progression) error {
	q := r.querier(ctx)

	query, args, err := psql.Insert("progressions").
		Columns("id", "job_id", "candidate_id", "candidate_name", "candidate_email", "job_role",
			"rounds_total", "completed_rounds", "next_round_index", "status", "current_round_scheduled",
			"created_at", "updated_at").
		Values(progression.ID(), progression.JobID(), progression.CandidateID(),
			progression.CandidateName(), progression.CandidateEmail(), progression.JobRole(),
			progression.RoundsTotal(), progression.CompletedRounds(), progression.NextRoundIndex(),
			string(progression.Status()), progression.CurrentRoundScheduled(),
			progression.CreatedAt(), progression.UpdatedAt()).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			completed_rounds = EXCLUDED.completed_rounds,
			next_round_index = EXCLUDED.next_round_index,
			status = EXCLUDED.status,
			current_round_scheduled = EXCLUDED.current_round_scheduled,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return err
	}

	query, args, err = psql.Delete("progression_rounds").
		Where(sq.Eq{"progression_id": progression.ID()}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, round := range progression.Rounds() {
		var (
			eventID, meetingLink, timezone      *string
			startTime, endTime                  *time.Time
			degraded                            bool
			feedback, verdict, rescheduleReason *string
			rating                              *int
		)
		if booking := round.Booking(); booking != nil {
			if booking.EventID != "" {
				eventID = &booking.EventID
			}
			meetingLink = &booking.MeetingLink
			startTime = &booking.StartTime
			endTime = &booking.EndTime
			timezone = &booking.Timezone
			degraded = booking.Degraded
		}
		if decision := round.Decision(); decision != nil {
			feedback = &decision.Feedback
			rating = &decision.Rating
			v := string(decision.Verdict)
			verdict = &v
		}
		if reason := round.RescheduleReason(); reason != "" {
			rescheduleReason = &reason
		}

		query, args, err := psql.Insert("progression_rounds").
			Columns("id", "progression_id", "round_number", "round_type",
				"interviewer_id", "interviewer_name", "interviewer_email", "department",
				"event_id", "meeting_link", "start_time", "end_time", "timezone", "booking_degraded",
				"feedback", "rating", "verdict", "rescheduled", "reschedule_reason",
				"created_at", "updated_at").
			Values(uuid.New(), progression.ID(), round.RoundNumber(), string(round.RoundType()),
				round.InterviewerID(), round.InterviewerName(), round.InterviewerEmail(), round.Department(),
				eventID, meetingLink, startTime, endTime, timezone, degraded,
				feedback, rating, verdict, round.Rescheduled(), rescheduleReason,
				now, now).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a progression by its ID.
func (r *PostgresProgressionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Progression, error) {
	return r.queryOne(ctx, sq.Eq{"id": id})
}

// FindByJobAndCandidate retrieves the progression for a (job, candidate)
// pair.
func (r *PostgresProgressionRepository) FindByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*domain.Progression, error) {
	return r.queryOne(ctx, sq.Eq{"job_id": jobID, "candidate_id": candidateID})
}

// FindByJob retrieves all progressions for a job.
func (r *PostgresProgressionRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*domain.Progression, error) {
	return r.queryMany(ctx, sq.Eq{"job_id": jobID})
}

// FindByStatus retrieves all progressions in a status.
func (r *PostgresProgressionRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Progression, error) {
	return r.queryMany(ctx, sq.Eq{"status": string(status)})
}

// FindAll retrieves every progression.
func (r *PostgresProgressionRepository) FindAll(ctx context.Context) ([]*domain.Progression, error) {
	return r.queryMany(ctx, nil)
}

// Delete removes a progression. Rounds cascade.
func (r *PostgresProgressionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete("progressions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProgressionNotFound
	}
	return nil
}

type pgProgressionRow struct {
	id                    uuid.UUID
	jobID                 uuid.UUID
	candidateID           uuid.UUID
	candidateName         string
	candidateEmail        string
	jobRole               string
	completedRounds       int
	nextRoundIndex        int
	status                string
	currentRoundScheduled bool
	createdAt             time.Time
	updatedAt             time.Time
}

func scanPgRow(row pgx.Row) (*pgProgressionRow, error) {
	var out pgProgressionRow
	err := row.Scan(
		&out.id, &out.jobID, &out.candidateID, &out.candidateName, &out.candidateEmail, &out.jobRole,
		&out.completedRounds, &out.nextRoundIndex, &out.status, &out.currentRoundScheduled,
		&out.createdAt, &out.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PostgresProgressionRepository) queryOne(ctx context.Context, where any) (*domain.Progression, error) {
	query, args, err := psql.Select(progressionSelectColumns...).
		From("progressions").
		Where(where).
		ToSql()
	if err != nil {
		return nil, err
	}
	row, err := scanPgRow(r.querier(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProgressionNotFound
		}
		return nil, err
	}
	return r.hydratePg(ctx, row)
}

func (r *PostgresProgressionRepository) queryMany(ctx context.Context, where any) ([]*domain.Progression, error) {
	builder := psql.Select(progressionSelectColumns...).
		From("progressions").
		OrderBy("created_at")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []*pgProgressionRow
	for rows.Next() {
		row, err := scanPgRow(rows)
		if err != nil {
			return nil, err
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	progressions := make([]*domain.Progression, 0, len(raw))
	for _, row := range raw {
		progression, err := r.hydratePg(ctx, row)
		if err != nil {
			return nil, err
		}
		progressions = append(progressions, progression)
	}
	return progressions, nil
}

func (r *PostgresProgressionRepository) hydratePg(ctx context.Context, row *pgProgressionRow) (*domain.Progression, error) {
	rounds, err := r.loadRounds(ctx, row.id)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateProgression(
		sharedDomain.RehydrateBaseEntity(row.id, row.createdAt, row.updatedAt),
		row.jobID,
		row.candidateID,
		row.candidateName,
		row.candidateEmail,
		row.jobRole,
		rounds,
		row.completedRounds,
		row.nextRoundIndex,
		domain.Status(row.status),
		row.currentRoundScheduled,
	), nil
}

func (r *PostgresProgressionRepository) loadRounds(ctx context.Context, progressionID uuid.UUID) ([]*domain.Round, error) {
	query, args, err := psql.Select(
		"round_number", "round_type", "interviewer_id", "interviewer_name", "interviewer_email", "department",
		"event_id", "meeting_link", "start_time", "end_time", "timezone", "booking_degraded",
		"feedback", "rating", "verdict", "rescheduled", "reschedule_reason").
		From("progression_rounds").
		Where(sq.Eq{"progression_id": progressionID}).
		OrderBy("round_number").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*domain.Round
	for rows.Next() {
		var (
			roundNumber                         int
			roundType, name, email, department  string
			interviewerID                       uuid.UUID
			eventID, meetingLink, timezone      *string
			startTime, endTime                  *time.Time
			degraded, rescheduled               bool
			feedback, verdict, rescheduleReason *string
			rating                              *int
		)
		err := rows.Scan(
			&roundNumber, &roundType, &interviewerID, &name, &email, &department,
			&eventID, &meetingLink, &startTime, &endTime, &timezone, &degraded,
			&feedback, &rating, &verdict, &rescheduled, &rescheduleReason,
		)
		if err != nil {
			return nil, err
		}

		var booking *domain.Booking
		if startTime != nil && endTime != nil {
			booking = &domain.Booking{
				StartTime: *startTime,
				EndTime:   *endTime,
				Degraded:  degraded,
			}
			if eventID != nil {
				booking.EventID = *eventID
			}
			if meetingLink != nil {
				booking.MeetingLink = *meetingLink
			}
			if timezone != nil {
				booking.Timezone = *timezone
			}
		}
		var decision *domain.Decision
		if verdict != nil {
			decision = &domain.Decision{Verdict: domain.Verdict(*verdict)}
			if feedback != nil {
				decision.Feedback = *feedback
			}
			if rating != nil {
				decision.Rating = *rating
			}
		}
		reason := ""
		if rescheduleReason != nil {
			reason = *rescheduleReason
		}

		rounds = append(rounds, domain.RehydrateRound(
			roundNumber,
			domain.RoundType(roundType),
			interviewerID,
			name, email, department,
			booking,
			decision,
			rescheduled,
			reason,
		))
	}
	return rounds, rows.Err()
}
