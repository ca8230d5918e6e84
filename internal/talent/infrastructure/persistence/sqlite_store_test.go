package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/shared/infrastructure/database"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/migrations"
	"github.com/hiresync/hiresync/internal/talent/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "hiresync_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))
	return db
}

func TestSQLiteStore_Jobs(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(openTestDB(t))

	job := domain.JobPosting{
		ID:                uuid.New(),
		RoleName:          "Backend Engineer",
		Description:       "Go services and storage",
		YearsOfExperience: "3-5",
	}
	require.NoError(t, store.SaveJob(ctx, job))

	loaded, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.RoleName, loaded.RoleName)
	assert.Equal(t, job.Description, loaded.Description)
	assert.Equal(t, job.YearsOfExperience, loaded.YearsOfExperience)
	assert.False(t, loaded.CreatedAt.IsZero())

	job.RoleName = "Senior Backend Engineer"
	require.NoError(t, store.SaveJob(ctx, job))
	loaded, err = store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", loaded.RoleName)

	_, err = store.GetJob(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestSQLiteStore_Candidates(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(openTestDB(t))
	jobID := uuid.New()

	candidates := []domain.CandidateRecord{
		{ID: uuid.New(), JobID: jobID, Name: "Ana", Email: "ana@example.com", FitScore: 95, ExperienceYears: 4.5, Skills: []string{"go", "postgres"}},
		{ID: uuid.New(), JobID: jobID, Name: "Ben", Email: "ben@example.com", FitScore: 70, ExperienceYears: 2},
		{ID: uuid.New(), JobID: uuid.New(), Name: "Cleo", Email: "cleo@example.com", FitScore: 90},
	}
	for _, candidate := range candidates {
		require.NoError(t, store.SaveCandidate(ctx, candidate))
	}

	byJob, err := store.GetCandidatesByJob(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, byJob, 2)

	ana, err := store.GetCandidate(ctx, candidates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", ana.Name)
	assert.Equal(t, 95, ana.FitScore)
	assert.Equal(t, 4.5, ana.ExperienceYears)
	assert.Equal(t, []string{"go", "postgres"}, ana.Skills)

	ben, err := store.GetCandidate(ctx, candidates[1].ID)
	require.NoError(t, err)
	assert.Nil(t, ben.Skills)

	_, err = store.GetCandidate(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
}

func TestSQLiteStore_Interviewers(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(openTestDB(t))

	tara := domain.InterviewerProfile{
		ID:         uuid.New(),
		Name:       "Tara",
		Email:      "tara@example.com",
		Expertise:  []string{"engineering", "golang"},
		Department: "Engineering",
	}
	hugo := domain.InterviewerProfile{
		ID:         uuid.New(),
		Name:       "Hugo",
		Email:      "hugo@example.com",
		Expertise:  []string{"hr"},
		Department: "People",
	}
	require.NoError(t, store.SaveInterviewer(ctx, tara))
	require.NoError(t, store.SaveInterviewer(ctx, hugo))

	pool, err := store.GetAllInterviewers(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, []string{"engineering", "golang"}, pool[0].Expertise)

	// Upsert replaces in place instead of duplicating.
	tara.Department = "Platform"
	require.NoError(t, store.SaveInterviewer(ctx, tara))
	pool, err = store.GetAllInterviewers(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 2)
}
