package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	"github.com/hiresync/hiresync/internal/interviews/infrastructure/persistence"
)

func seedRepo(t *testing.T) (*persistence.InMemoryProgressionRepository, uuid.UUID) {
	t.Helper()
	repo := persistence.NewInMemoryProgressionRepository()
	jobID := uuid.New()
	ctx := context.Background()

	assignments := []domain.RoundAssignment{
		{RoundType: domain.RoundTechnical, InterviewerID: uuid.New(), InterviewerName: "Tara", InterviewerEmail: "tara@example.com", Department: "Engineering"},
		{RoundType: domain.RoundManager, InterviewerID: uuid.New(), InterviewerName: "Mila", InterviewerEmail: "mila@example.com", Department: "Management"},
	}
	start := time.Date(2026, time.September, 10, 10, 0, 0, 0, time.UTC)

	// Ana: round 1 booked degraded, passed, round 2 rescheduled and booked.
	ana, err := domain.NewProgression(jobID, uuid.New(), "Ana", "ana@example.com", "Backend Engineer", assignments)
	require.NoError(t, err)
	require.NoError(t, ana.RecordBooking(0, domain.Booking{
		MeetingLink: "https://meet.hiresync.dev/aaa-bbbb-ccc",
		StartTime:   start, EndTime: start.Add(time.Hour), Timezone: "UTC", Degraded: true,
	}))
	_, err = ana.SubmitFeedback(0, "solid", 8, domain.VerdictYes)
	require.NoError(t, err)
	require.NoError(t, ana.MarkRescheduled(1, "interviewer travel"))
	require.NoError(t, ana.RecordBooking(1, domain.Booking{
		EventID:     "evt-2",
		MeetingLink: "https://meet.hiresync.dev/ddd-eeee-fff",
		StartTime:   start.AddDate(0, 0, 1), EndTime: start.AddDate(0, 0, 1).Add(time.Hour), Timezone: "UTC",
	}))
	ana.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, ana))

	// Ben: round 1 booked, rejected.
	ben, err := domain.NewProgression(jobID, uuid.New(), "Ben", "ben@example.com", "Backend Engineer", assignments)
	require.NoError(t, err)
	require.NoError(t, ben.RecordBooking(0, domain.Booking{
		EventID:     "evt-3",
		MeetingLink: "https://meet.hiresync.dev/ggg-hhhh-iii",
		StartTime:   start, EndTime: start.Add(time.Hour), Timezone: "UTC",
	}))
	_, err = ben.SubmitFeedback(0, "weak", 3, domain.VerdictNo)
	require.NoError(t, err)
	ben.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, ben))

	// Cleo: a different job, untouched.
	cleo, err := domain.NewProgression(uuid.New(), uuid.New(), "Cleo", "cleo@example.com", "Data Engineer", assignments)
	require.NoError(t, err)
	cleo.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, cleo))

	return repo, jobID
}

func TestGetProgressionHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo, jobID := seedRepo(t)
	handler := NewGetProgressionHandler(repo)

	progressions, err := repo.FindByJob(ctx, jobID)
	require.NoError(t, err)
	var ana *domain.Progression
	for _, p := range progressions {
		if p.CandidateName() == "Ana" {
			ana = p
		}
	}
	require.NotNil(t, ana)

	t.Run("maps the full progression into the view", func(t *testing.T) {
		view, err := handler.Handle(ctx, GetProgressionQuery{ProgressionID: ana.ID()})
		require.NoError(t, err)

		assert.Equal(t, ana.ID(), view.ID)
		assert.Equal(t, "Ana", view.CandidateName)
		assert.Equal(t, "Backend Engineer", view.JobRole)
		assert.Equal(t, "in_progress", view.Status)
		assert.Equal(t, 1, view.CompletedRounds)
		assert.Equal(t, 1, view.NextRoundIndex)
		assert.True(t, view.CurrentRoundScheduled)

		require.Len(t, view.Rounds, 2)
		first := view.Rounds[0]
		assert.Equal(t, "Technical", first.RoundType)
		require.NotNil(t, first.Booking)
		assert.True(t, first.Booking.Degraded)
		require.NotNil(t, first.Decision)
		assert.Equal(t, "yes", first.Decision.Verdict)
		assert.Equal(t, 8, first.Decision.Rating)

		second := view.Rounds[1]
		assert.True(t, second.Rescheduled)
		assert.Equal(t, "interviewer travel", second.RescheduleReason)
		require.NotNil(t, second.Booking)
		assert.Equal(t, "evt-2", second.Booking.EventID)
		assert.Nil(t, second.Decision)
	})

	t.Run("unknown progression is an error", func(t *testing.T) {
		_, err := handler.Handle(ctx, GetProgressionQuery{ProgressionID: uuid.New()})
		assert.ErrorIs(t, err, domain.ErrProgressionNotFound)
	})
}

func TestListProgressionsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo, jobID := seedRepo(t)
	handler := NewListProgressionsHandler(repo)

	t.Run("lists everything by default", func(t *testing.T) {
		views, err := handler.Handle(ctx, ListProgressionsQuery{})
		require.NoError(t, err)
		assert.Len(t, views, 3)
	})

	t.Run("filters by job", func(t *testing.T) {
		views, err := handler.Handle(ctx, ListProgressionsQuery{JobID: &jobID})
		require.NoError(t, err)
		require.Len(t, views, 2)
		for _, view := range views {
			assert.Equal(t, jobID, view.JobID)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		status := domain.StatusRejected
		views, err := handler.Handle(ctx, ListProgressionsQuery{Status: &status})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Ben", views[0].CandidateName)
	})

	t.Run("combines job and status filters", func(t *testing.T) {
		status := domain.StatusInProgress
		views, err := handler.Handle(ctx, ListProgressionsQuery{JobID: &jobID, Status: &status})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Ana", views[0].CandidateName)
	})
}

func TestTrackingStatsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo, jobID := seedRepo(t)
	handler := NewTrackingStatsHandler(repo)

	t.Run("aggregates across all jobs", func(t *testing.T) {
		stats, err := handler.Handle(ctx, TrackingStatsQuery{})
		require.NoError(t, err)

		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, map[string]int{
			"in_progress": 1,
			"rejected":    1,
			"scheduled":   1,
		}, stats.ByStatus)
		assert.Equal(t, 2, stats.RoundsCompleted)
		// Ana holds two bookings, Ben one.
		assert.Equal(t, 3, stats.ActiveBookings)
		assert.Equal(t, 1, stats.DegradedBookings)
		assert.Equal(t, 1, stats.RescheduledRounds)
	})

	t.Run("scopes to a single job", func(t *testing.T) {
		stats, err := handler.Handle(ctx, TrackingStatsQuery{JobID: &jobID})
		require.NoError(t, err)

		assert.Equal(t, 2, stats.Total)
		assert.Equal(t, 2, stats.RoundsCompleted)
	})
}
