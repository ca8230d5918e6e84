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

type cancelFixture struct {
	*bookingFixture
	handler *CancelRoundHandler
}

func newCancelFixture(t *testing.T) *cancelFixture {
	t.Helper()
	booking := newBookingFixture(t, DefaultBookingConfig())
	handler := NewCancelRoundHandler(
		booking.repo,
		booking.calendar,
		booking.outbox,
		sharedApplication.NoopUnitOfWork{},
		lock.NewKeyedMutex(),
		nil,
	)
	return &cancelFixture{bookingFixture: booking, handler: handler}
}

func TestCancelRoundHandler_Handle(t *testing.T) {
	ctx := context.Background()

	bookFirstRound := func(t *testing.T, f *cancelFixture, progression *domain.Progression) {
		t.Helper()
		result, err := f.bookingFixture.handler.Handle(ctx, BookRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		require.NoError(t, err)
		require.Equal(t, OutcomeBooked, result.Outcome)
	}

	t.Run("cancels a booked round and deletes the event", func(t *testing.T) {
		f := newCancelFixture(t)
		progression := seedProgression(t, f.repo)
		bookFirstRound(t, f, progression)

		result, err := f.handler.Handle(ctx, CancelRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			Reason:        "candidate withdrew the slot",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.RoundNumber)
		assert.True(t, result.EventDeleted)
		assert.Empty(t, f.calendar.inner.Events())

		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		round, err := stored.Round(0)
		require.NoError(t, err)
		assert.False(t, round.IsBooked())
		assert.False(t, stored.CurrentRoundScheduled())
		// Status and counters are untouched by a cancellation.
		assert.Equal(t, domain.StatusScheduled, stored.Status())
		assert.Equal(t, 0, stored.CompletedRounds())
	})

	t.Run("reports when the provider refused the delete", func(t *testing.T) {
		f := newCancelFixture(t)
		progression := seedProgression(t, f.repo)
		bookFirstRound(t, f, progression)
		f.calendar.deleteErr = errors.New("provider unavailable")

		result, err := f.handler.Handle(ctx, CancelRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		require.NoError(t, err)

		assert.False(t, result.EventDeleted)
		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		round, err := stored.Round(0)
		require.NoError(t, err)
		assert.False(t, round.IsBooked())
	})

	t.Run("a degraded booking has no event to delete", func(t *testing.T) {
		f := newCancelFixture(t)
		progression := seedProgression(t, f.repo)
		f.calendar.createErr = errors.New("provider unavailable")
		bookFirstRound(t, f, progression)
		f.calendar.createErr = nil

		result, err := f.handler.Handle(ctx, CancelRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		require.NoError(t, err)
		assert.False(t, result.EventDeleted)
	})

	t.Run("cancelling an unbooked round is rejected", func(t *testing.T) {
		f := newCancelFixture(t)
		progression := seedProgression(t, f.repo)

		_, err := f.handler.Handle(ctx, CancelRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		assert.ErrorIs(t, err, domain.ErrRoundNotBooked)
	})

	t.Run("cancelled round emits a booking cleared message", func(t *testing.T) {
		f := newCancelFixture(t)
		progression := seedProgression(t, f.repo)
		bookFirstRound(t, f, progression)

		_, err := f.handler.Handle(ctx, CancelRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		require.NoError(t, err)

		keys := routingKeys(f.outbox.Messages())
		assert.Contains(t, keys, "interviews.round.booking_cleared")
	})
}
