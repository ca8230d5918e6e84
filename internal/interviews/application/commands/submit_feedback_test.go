package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
)

type feedbackFixture struct {
	*bookingFixture
	handler *SubmitFeedbackHandler
}

func newFeedbackFixture(t *testing.T) *feedbackFixture {
	t.Helper()
	booking := newBookingFixture(t, DefaultBookingConfig())
	handler := NewSubmitFeedbackHandler(
		booking.repo,
		booking.handler,
		booking.outbox,
		sharedApplication.NoopUnitOfWork{},
		lock.NewKeyedMutex(),
		nil,
	)
	return &feedbackFixture{bookingFixture: booking, handler: handler}
}

func TestSubmitFeedbackHandler_Handle(t *testing.T) {
	ctx := context.Background()

	bookRound := func(t *testing.T, f *feedbackFixture, progression *domain.Progression, index int) {
		t.Helper()
		result, err := f.bookingFixture.handler.Handle(ctx, BookRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    index,
		})
		require.NoError(t, err)
		require.Equal(t, OutcomeBooked, result.Outcome)
	}

	t.Run("a pass books the next round automatically", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)

		result, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "strong fundamentals",
			Rating:        8,
			Verdict:       domain.VerdictYes,
		})
		require.NoError(t, err)

		assert.True(t, result.Advanced)
		assert.Equal(t, domain.StatusInProgress, result.Status)
		assert.Equal(t, 1, result.CompletedRounds)
		assert.Equal(t, 1, result.NextRoundIndex)

		require.NotNil(t, result.NextBooking)
		assert.Equal(t, OutcomeBooked, result.NextBooking.Outcome)
		assert.Equal(t, 2, result.NextBooking.RoundNumber)
		assert.Equal(t, "Mila", result.NextBooking.InterviewerName)

		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		assert.True(t, stored.CurrentRoundScheduled())
	})

	t.Run("a no closes the progression without booking", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)
		eventsBefore := len(f.calendar.inner.Events())

		result, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "not a fit",
			Rating:        3,
			Verdict:       domain.VerdictNo,
		})
		require.NoError(t, err)

		assert.False(t, result.Advanced)
		assert.Nil(t, result.NextBooking)
		assert.Equal(t, domain.StatusRejected, result.Status)
		assert.Len(t, f.calendar.inner.Events(), eventsBefore)
	})

	t.Run("a pending verdict neither closes nor advances", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)

		result, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "second opinion needed",
			Rating:        5,
			Verdict:       domain.VerdictPending,
		})
		require.NoError(t, err)

		assert.False(t, result.Advanced)
		assert.Nil(t, result.NextBooking)
		assert.Equal(t, domain.StatusInProgress, result.Status)
	})

	t.Run("passing the final round selects the candidate", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)

		for index := 0; index < 2; index++ {
			result, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
				ProgressionID: progression.ID(),
				RoundIndex:    index,
				Feedback:      "pass",
				Rating:        8,
				Verdict:       domain.VerdictYes,
			})
			require.NoError(t, err)
			require.NotNil(t, result.NextBooking)
		}

		result, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    2,
			Feedback:      "hire",
			Rating:        9,
			Verdict:       domain.VerdictYes,
		})
		require.NoError(t, err)

		assert.False(t, result.Advanced)
		assert.Nil(t, result.NextBooking)
		assert.Equal(t, domain.StatusSelected, result.Status)
		assert.Equal(t, 3, result.CompletedRounds)
	})

	t.Run("a failed automatic booking does not fail the feedback", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)

		// The feedback's own lookup succeeds; the nested booking's fails.
		f.repo.findErr = errors.New("connection refused")
		f.repo.findsBeforeErr = 1

		result, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "pass",
			Rating:        8,
			Verdict:       domain.VerdictYes,
		})
		require.NoError(t, err)
		require.True(t, result.Advanced)
		assert.Nil(t, result.NextBooking)

		f.repo.findErr = nil
		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		assert.Equal(t, 1, stored.NextRoundIndex())
		round, err := stored.Round(1)
		require.NoError(t, err)
		assert.False(t, round.IsBooked())
	})

	t.Run("feedback on an unbooked round is rejected", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)

		_, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "pass",
			Rating:        8,
			Verdict:       domain.VerdictYes,
		})
		assert.ErrorIs(t, err, domain.ErrRoundNotBooked)
	})

	t.Run("feedback on a terminal progression is rejected", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)

		_, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "no",
			Rating:        2,
			Verdict:       domain.VerdictNo,
		})
		require.NoError(t, err)

		_, err = f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "changed my mind",
			Rating:        8,
			Verdict:       domain.VerdictYes,
		})
		assert.ErrorIs(t, err, domain.ErrProgressionClosed)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		f := newFeedbackFixture(t)
		progression := seedProgression(t, f.repo)
		bookRound(t, f, progression, 0)
		f.repo.findErr = errors.New("connection refused")

		_, err := f.handler.Handle(ctx, SubmitFeedbackCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Feedback:      "pass",
			Rating:        8,
			Verdict:       domain.VerdictYes,
		})
		assert.ErrorContains(t, err, "connection refused")
	})
}
