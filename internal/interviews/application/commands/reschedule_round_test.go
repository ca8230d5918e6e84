package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
)

type rescheduleFixture struct {
	*bookingFixture
	handler *RescheduleRoundHandler
}

func newRescheduleFixture(t *testing.T) *rescheduleFixture {
	t.Helper()
	booking := newBookingFixture(t, DefaultBookingConfig())
	handler := NewRescheduleRoundHandler(
		booking.repo,
		booking.calendar,
		booking.handler,
		booking.outbox,
		sharedApplication.NoopUnitOfWork{},
		lock.NewKeyedMutex(),
		nil,
	)
	return &rescheduleFixture{bookingFixture: booking, handler: handler}
}

func TestRescheduleRoundHandler_Handle(t *testing.T) {
	ctx := context.Background()

	bookFirstRound := func(t *testing.T, f *rescheduleFixture, progression *domain.Progression) *BookRoundResult {
		t.Helper()
		result, err := f.bookingFixture.handler.Handle(ctx, BookRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		require.NoError(t, err)
		require.Equal(t, OutcomeBooked, result.Outcome)
		return result
	}

	t.Run("moves a booked round to the requested time", func(t *testing.T) {
		f := newRescheduleFixture(t)
		progression := seedProgression(t, f.repo)
		original := bookFirstRound(t, f, progression)
		newTime := fixedNow.AddDate(0, 0, 4)

		result, err := f.handler.Handle(ctx, RescheduleRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			NewTime:       newTime,
			Reason:        "interviewer travel",
		})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.Equal(t, newTime, result.StartTime)
		assert.NotEqual(t, original.StartTime, result.StartTime)

		// The old event is gone, exactly one event remains.
		require.Len(t, f.calendar.inner.Events(), 1)

		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		round, err := stored.Round(0)
		require.NoError(t, err)
		assert.True(t, round.IsBooked())
		assert.True(t, round.Rescheduled())
		assert.Equal(t, "interviewer travel", round.RescheduleReason())
		assert.Equal(t, newTime, round.Booking().StartTime)
	})

	t.Run("a provider failure on delete never blocks the rebooking", func(t *testing.T) {
		f := newRescheduleFixture(t)
		progression := seedProgression(t, f.repo)
		bookFirstRound(t, f, progression)
		f.calendar.deleteErr = errors.New("provider unavailable")
		newTime := fixedNow.AddDate(0, 0, 4)

		result, err := f.handler.Handle(ctx, RescheduleRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			NewTime:       newTime,
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.Equal(t, newTime, result.StartTime)
	})

	t.Run("rescheduling an unbooked round is rejected", func(t *testing.T) {
		f := newRescheduleFixture(t)
		progression := seedProgression(t, f.repo)

		_, err := f.handler.Handle(ctx, RescheduleRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			NewTime:       fixedNow.AddDate(0, 0, 4),
		})
		assert.ErrorIs(t, err, domain.ErrRoundNotBooked)
	})

	t.Run("rescheduling into the past is rejected and the old slot stays cleared", func(t *testing.T) {
		f := newRescheduleFixture(t)
		progression := seedProgression(t, f.repo)
		bookFirstRound(t, f, progression)

		_, err := f.handler.Handle(ctx, RescheduleRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			NewTime:       fixedNow.Add(-time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPreferredTime)

		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		round, err := stored.Round(0)
		require.NoError(t, err)
		assert.False(t, round.IsBooked())
	})
}
