package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/database"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/migrations"
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

func buildProgression(t *testing.T, jobID, candidateID uuid.UUID) *domain.Progression {
	t.Helper()
	progression, err := domain.NewProgression(jobID, candidateID, "Ana Flores", "ana@example.com", "Backend Engineer", []domain.RoundAssignment{
		{RoundType: domain.RoundTechnical, InterviewerID: uuid.New(), InterviewerName: "Tara", InterviewerEmail: "tara@example.com", Department: "Engineering"},
		{RoundType: domain.RoundManager, InterviewerID: uuid.New(), InterviewerName: "Mila", InterviewerEmail: "mila@example.com", Department: "Management"},
		{RoundType: domain.RoundHR, InterviewerID: uuid.New(), InterviewerName: "Hugo", InterviewerEmail: "hugo@example.com", Department: "HR"},
	})
	require.NoError(t, err)
	progression.ClearDomainEvents()
	return progression
}

func TestSQLiteProgressionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLiteProgressionRepository(db)

	jobID := uuid.New()
	candidateID := uuid.New()
	progression := buildProgression(t, jobID, candidateID)

	start := time.Date(2026, time.September, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, progression.RecordBooking(0, domain.Booking{
		EventID:     "evt-1",
		MeetingLink: "https://meet.hiresync.dev/aaa-bbbb-ccc",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Timezone:    "UTC",
	}))
	_, err := progression.SubmitFeedback(0, "strong fundamentals", 8, domain.VerdictYes)
	require.NoError(t, err)
	require.NoError(t, progression.MarkRescheduled(1, "interviewer travel"))
	require.NoError(t, progression.RecordBooking(1, domain.Booking{
		MeetingLink: "https://meet.hiresync.dev/ddd-eeee-fff",
		StartTime:   start.AddDate(0, 0, 1),
		EndTime:     start.AddDate(0, 0, 1).Add(time.Hour),
		Timezone:    "UTC",
		Degraded:    true,
	}))
	progression.ClearDomainEvents()

	require.NoError(t, repo.Save(ctx, progression))

	loaded, err := repo.FindByID(ctx, progression.ID())
	require.NoError(t, err)

	assert.Equal(t, progression.ID(), loaded.ID())
	assert.Equal(t, jobID, loaded.JobID())
	assert.Equal(t, candidateID, loaded.CandidateID())
	assert.Equal(t, "Ana Flores", loaded.CandidateName())
	assert.Equal(t, "ana@example.com", loaded.CandidateEmail())
	assert.Equal(t, "Backend Engineer", loaded.JobRole())
	assert.Equal(t, domain.StatusInProgress, loaded.Status())
	assert.Equal(t, 3, loaded.RoundsTotal())
	assert.Equal(t, 1, loaded.CompletedRounds())
	assert.Equal(t, 1, loaded.NextRoundIndex())
	assert.True(t, loaded.CurrentRoundScheduled())

	rounds := loaded.Rounds()
	require.Len(t, rounds, 3)

	first := rounds[0]
	assert.Equal(t, 1, first.RoundNumber())
	assert.Equal(t, domain.RoundTechnical, first.RoundType())
	assert.Equal(t, "Tara", first.InterviewerName())
	require.NotNil(t, first.Booking())
	assert.Equal(t, "evt-1", first.Booking().EventID)
	assert.True(t, first.Booking().StartTime.Equal(start))
	assert.False(t, first.Booking().Degraded)
	require.NotNil(t, first.Decision())
	assert.Equal(t, "strong fundamentals", first.Decision().Feedback)
	assert.Equal(t, 8, first.Decision().Rating)
	assert.Equal(t, domain.VerdictYes, first.Decision().Verdict)

	second := rounds[1]
	require.NotNil(t, second.Booking())
	assert.Empty(t, second.Booking().EventID)
	assert.True(t, second.Booking().Degraded)
	assert.True(t, second.Rescheduled())
	assert.Equal(t, "interviewer travel", second.RescheduleReason())
	assert.Nil(t, second.Decision())

	third := rounds[2]
	assert.Nil(t, third.Booking())
	assert.Nil(t, third.Decision())
}

func TestSQLiteProgressionRepository_SaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLiteProgressionRepository(db)

	progression := buildProgression(t, uuid.New(), uuid.New())
	require.NoError(t, repo.Save(ctx, progression))

	start := time.Date(2026, time.September, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, progression.RecordBooking(0, domain.Booking{
		EventID:     "evt-9",
		MeetingLink: "https://meet.hiresync.dev/aaa-bbbb-ccc",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Timezone:    "UTC",
	}))
	progression.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, progression))

	loaded, err := repo.FindByID(ctx, progression.ID())
	require.NoError(t, err)
	round, err := loaded.Round(0)
	require.NoError(t, err)
	require.NotNil(t, round.Booking())
	assert.Equal(t, "evt-9", round.Booking().EventID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteProgressionRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSQLiteProgressionRepository(db)

	jobID := uuid.New()
	candidateID := uuid.New()
	first := buildProgression(t, jobID, candidateID)
	second := buildProgression(t, jobID, uuid.New())
	other := buildProgression(t, uuid.New(), uuid.New())
	for _, p := range []*domain.Progression{first, second, other} {
		require.NoError(t, repo.Save(ctx, p))
	}

	t.Run("FindByJobAndCandidate", func(t *testing.T) {
		found, err := repo.FindByJobAndCandidate(ctx, jobID, candidateID)
		require.NoError(t, err)
		assert.Equal(t, first.ID(), found.ID())

		_, err = repo.FindByJobAndCandidate(ctx, jobID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrProgressionNotFound)
	})

	t.Run("FindByJob", func(t *testing.T) {
		found, err := repo.FindByJob(ctx, jobID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("FindByStatus", func(t *testing.T) {
		found, err := repo.FindByStatus(ctx, domain.StatusScheduled)
		require.NoError(t, err)
		assert.Len(t, found, 3)

		found, err = repo.FindByStatus(ctx, domain.StatusRejected)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("FindByID of unknown progression", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrProgressionNotFound)
	})

	t.Run("Delete removes the progression and its rounds", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, other.ID()))
		_, err := repo.FindByID(ctx, other.ID())
		assert.ErrorIs(t, err, domain.ErrProgressionNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, other.ID()), domain.ErrProgressionNotFound)
	})
}
