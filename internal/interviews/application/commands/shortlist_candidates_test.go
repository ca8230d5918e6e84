package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/interviews/application/services"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	talentDomain "github.com/hiresync/hiresync/internal/talent/domain"
	talentPersistence "github.com/hiresync/hiresync/internal/talent/infrastructure/persistence"
)

type shortlistFixture struct {
	*bookingFixture
	store   *talentPersistence.InMemoryStore
	handler *ShortlistCandidatesHandler
	jobID   uuid.UUID
}

func newShortlistFixture(t *testing.T) *shortlistFixture {
	t.Helper()
	booking := newBookingFixture(t, DefaultBookingConfig())
	store := talentPersistence.NewInMemoryStore()
	ctx := context.Background()

	jobID := uuid.New()
	require.NoError(t, store.SaveJob(ctx, talentDomain.JobPosting{ID: jobID, RoleName: "Backend Engineer"}))

	scores := []struct {
		name  string
		score int
	}{
		{"Ana", 95},
		{"Ben", 70},
		{"Cleo", 90},
		{"Dara", 85},
		{"Edu", 60},
	}
	base := time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)
	for i, s := range scores {
		require.NoError(t, store.SaveCandidate(ctx, talentDomain.CandidateRecord{
			ID:        uuid.New(),
			JobID:     jobID,
			Name:      s.name,
			Email:     s.name + "@example.com",
			FitScore:  s.score,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	for _, p := range []struct {
		name, dept string
		expertise  []string
	}{
		{"Tara", "Engineering", []string{"engineering"}},
		{"Mila", "Leadership", []string{"management"}},
		{"Hugo", "People", []string{"hr"}},
	} {
		require.NoError(t, store.SaveInterviewer(ctx, talentDomain.InterviewerProfile{
			ID:         uuid.New(),
			Name:       p.name,
			Email:      p.name + "@example.com",
			Expertise:  p.expertise,
			Department: p.dept,
		}))
	}

	handler := NewShortlistCandidatesHandler(
		store, store, store,
		services.NewRoundPlanner(),
		booking.repo,
		booking.handler,
		booking.outbox,
		sharedApplication.NoopUnitOfWork{},
		nil,
	)

	return &shortlistFixture{
		bookingFixture: booking,
		store:          store,
		handler:        handler,
		jobID:          jobID,
	}
}

func TestShortlistCandidatesHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by fit score and starts the top K", func(t *testing.T) {
		f := newShortlistFixture(t)

		result, err := f.handler.Handle(ctx, ShortlistCandidatesCommand{
			JobID:       f.jobID,
			TopK:        3,
			RoundsTotal: 3,
		})
		require.NoError(t, err)

		assert.Equal(t, "Backend Engineer", result.JobRole)
		assert.Equal(t, 3, result.RoundsTotal)
		assert.False(t, result.Clamped)

		require.Len(t, result.Ranked, 3)
		assert.Equal(t, "Ana", result.Ranked[0].Name)
		assert.Equal(t, "Cleo", result.Ranked[1].Name)
		assert.Equal(t, "Dara", result.Ranked[2].Name)
		assert.Equal(t, 95, result.Ranked[0].FitScore)

		assert.Len(t, result.Created, 3)
		assert.Empty(t, result.Reused)

		// Round 0 is booked for every new progression.
		require.Len(t, result.Bookings, 3)
		for _, booking := range result.Bookings {
			assert.Equal(t, OutcomeBooked, booking.Outcome)
			assert.Equal(t, 1, booking.RoundNumber)
		}

		all, err := f.repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		for _, progression := range all {
			assert.Equal(t, 3, progression.RoundsTotal())
			assert.Equal(t, domain.StatusScheduled, progression.Status())
			assert.True(t, progression.CurrentRoundScheduled())
		}
	})

	t.Run("reuses an existing progression for the same job and candidate", func(t *testing.T) {
		f := newShortlistFixture(t)
		cmd := ShortlistCandidatesCommand{JobID: f.jobID, TopK: 2, RoundsTotal: 3}

		first, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
		second, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)

		assert.Len(t, first.Created, 2)
		assert.Empty(t, second.Created)
		assert.ElementsMatch(t, first.Created, second.Reused)

		all, err := f.repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("clamps the requested round count", func(t *testing.T) {
		f := newShortlistFixture(t)

		result, err := f.handler.Handle(ctx, ShortlistCandidatesCommand{
			JobID:       f.jobID,
			TopK:        1,
			RoundsTotal: 5,
		})
		require.NoError(t, err)

		assert.True(t, result.Clamped)
		assert.Equal(t, 4, result.RoundsTotal)
	})

	t.Run("top K larger than the candidate list selects everyone", func(t *testing.T) {
		f := newShortlistFixture(t)

		result, err := f.handler.Handle(ctx, ShortlistCandidatesCommand{
			JobID:       f.jobID,
			TopK:        50,
			RoundsTotal: 2,
		})
		require.NoError(t, err)

		assert.Len(t, result.Ranked, 5)
		assert.Len(t, result.Created, 5)
	})

	t.Run("pinned interviewers are honored on every progression", func(t *testing.T) {
		f := newShortlistFixture(t)
		pool, err := f.store.GetAllInterviewers(ctx)
		require.NoError(t, err)
		pinned := []uuid.UUID{pool[2].ID, pool[0].ID, pool[1].ID}

		result, err := f.handler.Handle(ctx, ShortlistCandidatesCommand{
			JobID:              f.jobID,
			TopK:               1,
			RoundsTotal:        3,
			PinnedInterviewers: pinned,
		})
		require.NoError(t, err)
		require.Len(t, result.Created, 1)

		progression, err := f.repo.FindByID(ctx, result.Created[0])
		require.NoError(t, err)
		rounds := progression.Rounds()
		require.Len(t, rounds, 3)
		assert.Equal(t, pinned[0], rounds[0].InterviewerID())
		assert.Equal(t, pinned[1], rounds[1].InterviewerID())
		assert.Equal(t, pinned[2], rounds[2].InterviewerID())
	})

	t.Run("unknown job is an error", func(t *testing.T) {
		f := newShortlistFixture(t)

		_, err := f.handler.Handle(ctx, ShortlistCandidatesCommand{JobID: uuid.New(), TopK: 3, RoundsTotal: 3})
		assert.ErrorIs(t, err, talentDomain.ErrJobNotFound)
	})

	t.Run("empty interviewer pool is an error", func(t *testing.T) {
		booking := newBookingFixture(t, DefaultBookingConfig())
		store := talentPersistence.NewInMemoryStore()
		jobID := uuid.New()
		require.NoError(t, store.SaveJob(ctx, talentDomain.JobPosting{ID: jobID, RoleName: "Backend Engineer"}))
		require.NoError(t, store.SaveCandidate(ctx, talentDomain.CandidateRecord{
			ID: uuid.New(), JobID: jobID, Name: "Ana", Email: "ana@example.com", FitScore: 95,
		}))

		handler := NewShortlistCandidatesHandler(
			store, store, store,
			services.NewRoundPlanner(),
			booking.repo,
			booking.handler,
			booking.outbox,
			sharedApplication.NoopUnitOfWork{},
			nil,
		)

		_, err := handler.Handle(ctx, ShortlistCandidatesCommand{JobID: jobID, TopK: 1, RoundsTotal: 3})
		assert.ErrorIs(t, err, services.ErrEmptyInterviewerPool)
	})
}
