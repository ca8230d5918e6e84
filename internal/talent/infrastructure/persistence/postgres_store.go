package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	sharedPersistence "github.com/hiresync/hiresync/internal/shared/infrastructure/persistence"
	"github.com/hiresync/hiresync/internal/talent/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore implements the talent store ports on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres talent store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresStore) querier(ctx context.Context) pgxQuerier {
	if tx, ok := sharedPersistence.PgxTxFromContext(ctx); ok {
		return tx
	}
	return s.pool
}

// GetJob returns the job with the given ID.
func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.JobPosting, error) {
	query, args, err := psql.Select("id", "role_name", "description", "years_of_experience", "created_at", "updated_at").
		From("jobs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var job domain.JobPosting
	err = s.querier(ctx).QueryRow(ctx, query, args...).
		Scan(&job.ID, &job.RoleName, &job.Description, &job.YearsOfExperience, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// SaveJob upserts a job posting.
func (s *PostgresStore) SaveJob(ctx context.Context, job domain.JobPosting) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	query, args, err := psql.Insert("jobs").
		Columns("id", "role_name", "description", "years_of_experience", "created_at", "updated_at").
		Values(job.ID, job.RoleName, job.Description, job.YearsOfExperience, job.CreatedAt, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			role_name = EXCLUDED.role_name,
			description = EXCLUDED.description,
			years_of_experience = EXCLUDED.years_of_experience,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.querier(ctx).Exec(ctx, query, args...)
	return err
}

// GetCandidatesByJob returns candidates for a job, oldest first.
func (s *PostgresStore) GetCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]domain.CandidateRecord, error) {
	query, args, err := psql.Select("id", "job_id", "name", "email", "fit_score", "experience_years", "skills", "created_at", "updated_at").
		From("candidates").
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CandidateRecord
	for rows.Next() {
		var (
			candidate domain.CandidateRecord
			skills    string
		)
		err := rows.Scan(&candidate.ID, &candidate.JobID, &candidate.Name, &candidate.Email,
			&candidate.FitScore, &candidate.ExperienceYears, &skills, &candidate.CreatedAt, &candidate.UpdatedAt)
		if err != nil {
			return nil, err
		}
		candidate.Skills = splitTags(skills)
		out = append(out, candidate)
	}
	return out, rows.Err()
}

// GetCandidate returns one candidate by ID.
func (s *PostgresStore) GetCandidate(ctx context.Context, id uuid.UUID) (*domain.CandidateRecord, error) {
	query, args, err := psql.Select("id", "job_id", "name", "email", "fit_score", "experience_years", "skills", "created_at", "updated_at").
		From("candidates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		candidate domain.CandidateRecord
		skills    string
	)
	err = s.querier(ctx).QueryRow(ctx, query, args...).
		Scan(&candidate.ID, &candidate.JobID, &candidate.Name, &candidate.Email,
			&candidate.FitScore, &candidate.ExperienceYears, &skills, &candidate.CreatedAt, &candidate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, err
	}
	candidate.Skills = splitTags(skills)
	return &candidate, nil
}

// SaveCandidate upserts a candidate record.
func (s *PostgresStore) SaveCandidate(ctx context.Context, candidate domain.CandidateRecord) error {
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	query, args, err := psql.Insert("candidates").
		Columns("id", "job_id", "name", "email", "fit_score", "experience_years", "skills", "created_at", "updated_at").
		Values(candidate.ID, candidate.JobID, candidate.Name, candidate.Email,
			candidate.FitScore, candidate.ExperienceYears, strings.Join(candidate.Skills, ","),
			candidate.CreatedAt, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			fit_score = EXCLUDED.fit_score,
			experience_years = EXCLUDED.experience_years,
			skills = EXCLUDED.skills,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.querier(ctx).Exec(ctx, query, args...)
	return err
}

// GetAllInterviewers returns the interviewer pool, oldest first.
func (s *PostgresStore) GetAllInterviewers(ctx context.Context) ([]domain.InterviewerProfile, error) {
	query, args, err := psql.Select("id", "name", "email", "expertise", "department", "created_at", "updated_at").
		From("interviewers").
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InterviewerProfile
	for rows.Next() {
		var (
			profile   domain.InterviewerProfile
			expertise string
		)
		err := rows.Scan(&profile.ID, &profile.Name, &profile.Email, &expertise,
			&profile.Department, &profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return nil, err
		}
		profile.Expertise = splitTags(expertise)
		out = append(out, profile)
	}
	return out, rows.Err()
}

// SaveInterviewer upserts an interviewer profile.
func (s *PostgresStore) SaveInterviewer(ctx context.Context, profile domain.InterviewerProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	query, args, err := psql.Insert("interviewers").
		Columns("id", "name", "email", "expertise", "department", "created_at", "updated_at").
		Values(profile.ID, profile.Name, profile.Email, strings.Join(profile.Expertise, ","),
			profile.Department, profile.CreatedAt, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			expertise = EXCLUDED.expertise,
			department = EXCLUDED.department,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.querier(ctx).Exec(ctx, query, args...)
	return err
}
