package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedPersistence "github.com/hiresync/hiresync/internal/shared/infrastructure/persistence"
	"github.com/hiresync/hiresync/internal/talent/domain"
)

// SQLiteStore implements the talent store ports on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite talent store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) querier(ctx context.Context) sqlQuerier {
	if info, ok := sharedPersistence.SQLTxFromContext(ctx); ok {
		return info.Tx
	}
	return s.db
}

// GetJob returns the job with the given ID.
func (s *SQLiteStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.JobPosting, error) {
	var (
		job                  domain.JobPosting
		rawID                string
		createdAt, updatedAt string
	)
	err := s.querier(ctx).QueryRowContext(ctx, `
		SELECT id, role_name, description, years_of_experience, created_at, updated_at
		FROM jobs WHERE id = ?`, id.String()).
		Scan(&rawID, &job.RoleName, &job.Description, &job.YearsOfExperience, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, err
	}
	job.ID, _ = uuid.Parse(rawID)
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &job, nil
}

// SaveJob upserts a job posting.
func (s *SQLiteStore) SaveJob(ctx context.Context, job domain.JobPosting) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO jobs (id, role_name, description, years_of_experience, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			role_name = excluded.role_name,
			description = excluded.description,
			years_of_experience = excluded.years_of_experience,
			updated_at = excluded.updated_at`,
		job.ID.String(), job.RoleName, job.Description, job.YearsOfExperience,
		job.CreatedAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	return err
}

// GetCandidatesByJob returns candidates for a job, oldest first.
func (s *SQLiteStore) GetCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]domain.CandidateRecord, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT id, job_id, name, email, fit_score, experience_years, skills, created_at, updated_at
		FROM candidates WHERE job_id = ? ORDER BY created_at`, jobID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CandidateRecord
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *candidate)
	}
	return out, rows.Err()
}

// GetCandidate returns one candidate by ID.
func (s *SQLiteStore) GetCandidate(ctx context.Context, id uuid.UUID) (*domain.CandidateRecord, error) {
	row := s.querier(ctx).QueryRowContext(ctx, `
		SELECT id, job_id, name, email, fit_score, experience_years, skills, created_at, updated_at
		FROM candidates WHERE id = ?`, id.String())
	candidate, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, err
	}
	return candidate, nil
}

// SaveCandidate upserts a candidate record.
func (s *SQLiteStore) SaveCandidate(ctx context.Context, candidate domain.CandidateRecord) error {
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO candidates (id, job_id, name, email, fit_score, experience_years, skills, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			fit_score = excluded.fit_score,
			experience_years = excluded.experience_years,
			skills = excluded.skills,
			updated_at = excluded.updated_at`,
		candidate.ID.String(), candidate.JobID.String(), candidate.Name, candidate.Email,
		candidate.FitScore, candidate.ExperienceYears, strings.Join(candidate.Skills, ","),
		candidate.CreatedAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	return err
}

// GetAllInterviewers returns the interviewer pool, oldest first.
func (s *SQLiteStore) GetAllInterviewers(ctx context.Context) ([]domain.InterviewerProfile, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `
		SELECT id, name, email, expertise, department, created_at, updated_at
		FROM interviewers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InterviewerProfile
	for rows.Next() {
		var (
			profile              domain.InterviewerProfile
			rawID, expertise     string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rawID, &profile.Name, &profile.Email, &expertise, &profile.Department, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		profile.ID, _ = uuid.Parse(rawID)
		profile.Expertise = splitTags(expertise)
		profile.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		profile.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, profile)
	}
	return out, rows.Err()
}

// SaveInterviewer upserts an interviewer profile.
func (s *SQLiteStore) SaveInterviewer(ctx context.Context, profile domain.InterviewerProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	_, err := s.querier(ctx).ExecContext(ctx, `
		INSERT INTO interviewers (id, name, email, expertise, department, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			expertise = excluded.expertise,
			department = excluded.department,
			updated_at = excluded.updated_at`,
		profile.ID.String(), profile.Name, profile.Email, strings.Join(profile.Expertise, ","),
		profile.Department, profile.CreatedAt.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(scanner rowScanner) (*domain.CandidateRecord, error) {
	var (
		candidate               domain.CandidateRecord
		rawID, rawJobID, skills string
		createdAt, updatedAt    string
	)
	err := scanner.Scan(&rawID, &rawJobID, &candidate.Name, &candidate.Email,
		&candidate.FitScore, &candidate.ExperienceYears, &skills, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	candidate.ID, _ = uuid.Parse(rawID)
	candidate.JobID, _ = uuid.Parse(rawJobID)
	candidate.Skills = splitTags(skills)
	candidate.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	candidate.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &candidate, nil
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
