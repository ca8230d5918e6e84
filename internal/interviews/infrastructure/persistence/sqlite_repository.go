package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedDomain "github.com/hiresync/hiresync/internal/shared/domain"
	sharedPersistence "github.com/hiresync/hiresync/internal/shared/infrastructure/persistence"
)

// SQLiteProgressionRepository implements domain.ProgressionRepository
// using SQLite.
type SQLiteProgressionRepository struct {
	db *sql.DB
}

// NewSQLiteProgressionRepository creates a new SQLite progression
// repository.
func NewSQLiteProgressionRepository(db *sql.DB) *SQLiteProgressionRepository {
	return &SQLiteProgressionRepository{db: db}
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteProgressionRepository) querier(ctx context.Context) sqlQuerier {
	if info, ok := sharedPersistence.SQLTxFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

const progressionColumns = `id, job_id, candidate_id, candidate_name, candidate_email, job_role,
	completed_rounds, next_round_index, status, current_round_scheduled, created_at, updated_at`

// Save upserts the progression and rewrites its rounds.
func (r *SQLiteProgressionRepository) Save(ctx context.Context, progression *domain.Progression) error {
	q := r.querier(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := q.ExecContext(ctx, `
		INSERT INTO progressions (id, job_id, candidate_id, candidate_name, candidate_email, job_role,
			rounds_total, completed_rounds, next_round_index, status, current_round_scheduled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			completed_rounds = excluded.completed_rounds,
			next_round_index = excluded.next_round_index,
			status = excluded.status,
			current_round_scheduled = excluded.current_round_scheduled,
			updated_at = excluded.updated_at`,
		progression.ID().String(),
		progression.JobID().String(),
		progression.CandidateID().String(),
		progression.CandidateName(),
		progression.CandidateEmail(),
		progression.JobRole(),
		progression.RoundsTotal(),
		progression.CompletedRounds(),
		progression.NextRoundIndex(),
		string(progression.Status()),
		boolToInt(progression.CurrentRoundScheduled()),
		progression.CreatedAt().UTC().Format(time.RFC3339Nano),
		progression.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	// Rounds are few per progression; delete and re-insert keeps the
	// write path simple.
	if _, err := q.ExecContext(ctx, `DELETE FROM progression_rounds WHERE progression_id = ?`, progression.ID().String()); err != nil {
		return err
	}
	for _, round := range progression.Rounds() {
		var (
			eventID, meetingLink, startTime, endTime, timezone sql.NullString
			degraded                                           int
			feedback, verdict, rescheduleReason                sql.NullString
			rating                                             sql.NullInt64
		)
		if booking := round.Booking(); booking != nil {
			eventID = nullString(booking.EventID)
			meetingLink = sql.NullString{String: booking.MeetingLink, Valid: true}
			startTime = sql.NullString{String: booking.StartTime.UTC().Format(time.RFC3339Nano), Valid: true}
			endTime = sql.NullString{String: booking.EndTime.UTC().Format(time.RFC3339Nano), Valid: true}
			timezone = sql.NullString{String: booking.Timezone, Valid: true}
			degraded = boolToInt(booking.Degraded)
		}
		if decision := round.Decision(); decision != nil {
			feedback = sql.NullString{String: decision.Feedback, Valid: true}
			rating = sql.NullInt64{Int64: int64(decision.Rating), Valid: true}
			verdict = sql.NullString{String: string(decision.Verdict), Valid: true}
		}
		rescheduleReason = nullString(round.RescheduleReason())

		_, err := q.ExecContext(ctx, `
			INSERT INTO progression_rounds (id, progression_id, round_number, round_type,
				interviewer_id, interviewer_name, interviewer_email, department,
				event_id, meeting_link, start_time, end_time, timezone, booking_degraded,
				feedback, rating, verdict, rescheduled, reschedule_reason, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(),
			progression.ID().String(),
			round.RoundNumber(),
			string(round.RoundType()),
			round.InterviewerID().String(),
			round.InterviewerName(),
			round.InterviewerEmail(),
			round.Department(),
			eventID, meetingLink, startTime, endTime, timezone, degraded,
			feedback, rating, verdict,
			boolToInt(round.Rescheduled()), rescheduleReason,
			now, now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a progression by its ID.
func (r *SQLiteProgressionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Progression, error) {
	row := r.querier(ctx).QueryRowContext(ctx,
		`SELECT `+progressionColumns+` FROM progressions WHERE id = ?`, id.String())
	return r.scanProgression(ctx, row)
}

// FindByJobAndCandidate retrieves the progression for a (job, candidate)
// pair.
func (r *SQLiteProgressionRepository) FindByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*domain.Progression, error) {
	row := r.querier(ctx).QueryRowContext(ctx,
		`SELECT `+progressionColumns+` FROM progressions WHERE job_id = ? AND candidate_id = ?`,
		jobID.String(), candidateID.String())
	return r.scanProgression(ctx, row)
}

// FindByJob retrieves all progressions for a job.
func (r *SQLiteProgressionRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*domain.Progression, error) {
	return r.query(ctx,
		`SELECT `+progressionColumns+` FROM progressions WHERE job_id = ? ORDER BY created_at`, jobID.String())
}

// FindByStatus retrieves all progressions in a status.
func (r *SQLiteProgressionRepository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Progression, error) {
	return r.query(ctx,
		`SELECT `+progressionColumns+` FROM progressions WHERE status = ? ORDER BY created_at`, string(status))
}

// FindAll retrieves every progression.
func (r *SQLiteProgressionRepository) FindAll(ctx context.Context) ([]*domain.Progression, error) {
	return r.query(ctx, `SELECT `+progressionColumns+` FROM progressions ORDER BY created_at`)
}

// Delete removes a progression. Rounds cascade.
func (r *SQLiteProgressionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier(ctx).ExecContext(ctx, `DELETE FROM progressions WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrProgressionNotFound
	}
	return nil
}

type progressionRow struct {
	id                    string
	jobID                 string
	candidateID           string
	candidateName         string
	candidateEmail        string
	jobRole               string
	completedRounds       int
	nextRoundIndex        int
	status                string
	currentRoundScheduled int
	createdAt             string
	updatedAt             string
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(scanner rowScanner) (*progressionRow, error) {
	var row progressionRow
	err := scanner.Scan(
		&row.id, &row.jobID, &row.candidateID, &row.candidateName, &row.candidateEmail, &row.jobRole,
		&row.completedRounds, &row.nextRoundIndex, &row.status, &row.currentRoundScheduled,
		&row.createdAt, &row.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *SQLiteProgressionRepository) scanProgression(ctx context.Context, scanner rowScanner) (*domain.Progression, error) {
	row, err := scanRow(scanner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProgressionNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, row)
}

func (r *SQLiteProgressionRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Progression, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []*progressionRow
	for rows.Next() {
		row, err := scanRow(rows)
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
		progression, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		progressions = append(progressions, progression)
	}
	return progressions, nil
}

func (r *SQLiteProgressionRepository) hydrate(ctx context.Context, row *progressionRow) (*domain.Progression, error) {
	id, err := uuid.Parse(row.id)
	if err != nil {
		return nil, err
	}
	jobID, _ := uuid.Parse(row.jobID)
	candidateID, _ := uuid.Parse(row.candidateID)
	createdAt, _ := time.Parse(time.RFC3339Nano, row.createdAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, row.updatedAt)

	rounds, err := r.loadRounds(ctx, row.id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateProgression(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		jobID,
		candidateID,
		row.candidateName,
		row.candidateEmail,
		row.jobRole,
		rounds,
		row.completedRounds,
		row.nextRoundIndex,
		domain.Status(row.status),
		row.currentRoundScheduled != 0,
	), nil
}

func (r *SQLiteProgressionRepository) loadRounds(ctx context.Context, progressionID string) ([]*domain.Round, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, `
		SELECT round_number, round_type, interviewer_id, interviewer_name, interviewer_email, department,
			event_id, meeting_link, start_time, end_time, timezone, booking_degraded,
			feedback, rating, verdict, rescheduled, reschedule_reason
		FROM progression_rounds WHERE progression_id = ? ORDER BY round_number`, progressionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*domain.Round
	for rows.Next() {
		var (
			roundNumber, degraded, rescheduled                 int
			roundType, interviewerID, name, email, department  string
			eventID, meetingLink, startTime, endTime, timezone sql.NullString
			feedback, verdict, rescheduleReason                sql.NullString
			rating                                             sql.NullInt64
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
		if startTime.Valid {
			start, _ := time.Parse(time.RFC3339Nano, startTime.String)
			end, _ := time.Parse(time.RFC3339Nano, endTime.String)
			booking = &domain.Booking{
				EventID:     eventID.String,
				MeetingLink: meetingLink.String,
				StartTime:   start,
				EndTime:     end,
				Timezone:    timezone.String,
				Degraded:    degraded != 0,
			}
		}
		var decision *domain.Decision
		if verdict.Valid {
			decision = &domain.Decision{
				Feedback: feedback.String,
				Rating:   int(rating.Int64),
				Verdict:  domain.Verdict(verdict.String),
			}
		}

		interviewer, _ := uuid.Parse(interviewerID)
		rounds = append(rounds, domain.RehydrateRound(
			roundNumber,
			domain.RoundType(roundType),
			interviewer,
			name, email, department,
			booking,
			decision,
			rescheduled != 0,
			rescheduleReason.String,
		))
	}
	return rounds, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
