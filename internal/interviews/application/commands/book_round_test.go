package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityDomain "github.com/hiresync/hiresync/internal/availability/domain"
	"github.com/hiresync/hiresync/internal/interviews/domain"
)

func TestBookRoundHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("books the earliest common slot", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)

		result, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.Equal(t, 1, result.RoundNumber)
		assert.Equal(t, "Technical", result.RoundType)
		assert.Equal(t, "Tara", result.InterviewerName)
		// Thursday 09:00, the first working-hours slot after the fixed now.
		assert.Equal(t, time.Date(2026, time.September, 10, 9, 0, 0, 0, time.UTC), result.StartTime)
		assert.Equal(t, result.StartTime.Add(time.Hour), result.EndTime)
		assert.False(t, result.Degraded)
		assert.False(t, result.FallbackSlot)
		assert.NotEmpty(t, result.MeetingLink)

		require.Len(t, f.calendar.inner.Events(), 1)
		assert.Equal(t, []string{"interviews.round.booked"}, routingKeys(f.outbox.Messages()))

		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		assert.True(t, stored.CurrentRoundScheduled())
		assert.Empty(t, stored.DomainEvents())
	})

	t.Run("reports an existing booking instead of double booking", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		cmd := BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0}

		first, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)
		second, err := f.handler.Handle(ctx, cmd)
		require.NoError(t, err)

		assert.Equal(t, OutcomeAlreadyScheduled, second.Outcome)
		assert.Equal(t, first.StartTime, second.StartTime)
		assert.Equal(t, first.MeetingLink, second.MeetingLink)
		assert.Len(t, f.calendar.inner.Events(), 1)
	})

	t.Run("uses the preferred time verbatim", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		preferred := fixedNow.AddDate(0, 0, 3)

		result, err := f.handler.Handle(ctx, BookRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			PreferredTime: &preferred,
		})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.Equal(t, preferred, result.StartTime)
	})

	t.Run("rejects a preferred time in the past", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		past := fixedNow.Add(-time.Hour)

		_, err := f.handler.Handle(ctx, BookRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
			PreferredTime: &past,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPreferredTime)
	})

	t.Run("degrades to a fabricated link when event creation fails", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		f.calendar.createErr = errors.New("provider unavailable")

		result, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.True(t, result.Degraded)
		assert.Contains(t, result.MeetingLink, "https://meet.hiresync.dev/")
		assert.Empty(t, f.calendar.inner.Events())

		stored, err := f.repo.FindByID(ctx, progression.ID())
		require.NoError(t, err)
		round, err := stored.Round(0)
		require.NoError(t, err)
		require.NotNil(t, round.Booking())
		assert.True(t, round.Booking().Degraded)
		assert.Empty(t, round.Booking().EventID)
	})

	t.Run("falls back to the default slot when nothing is free", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		f.calendar.inner.SeedBusy("tara@example.com", availabilityDomain.Interval{
			Start: fixedNow.AddDate(0, 0, 1),
			End:   fixedNow.AddDate(0, 0, 8),
		})

		result, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.True(t, result.FallbackSlot)
		// Next business day at 10:00.
		assert.Equal(t, time.Date(2026, time.September, 10, 10, 0, 0, 0, time.UTC), result.StartTime)
	})

	t.Run("reports no slot when the fallback is disabled", func(t *testing.T) {
		config := DefaultBookingConfig()
		config.FallbackToDefaultSlot = false
		f := newBookingFixture(t, config)
		progression := seedProgression(t, f.repo)
		f.calendar.inner.SeedBusy("tara@example.com", availabilityDomain.Interval{
			Start: fixedNow.AddDate(0, 0, 1),
			End:   fixedNow.AddDate(0, 0, 8),
		})

		result, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		require.NoError(t, err)

		assert.Equal(t, OutcomeNoSlot, result.Outcome)
		assert.Empty(t, f.calendar.inner.Events())
		assert.Empty(t, f.outbox.Messages())
	})

	t.Run("treats a failed busy lookup as no availability and falls back", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		f.calendar.busyErr = errors.New("caldav timeout")

		result, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBooked, result.Outcome)
		assert.True(t, result.FallbackSlot)
	})

	t.Run("blocks booking on a terminal progression", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)

		_, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		require.NoError(t, err)
		_, err = progression.SubmitFeedback(0, "weak", 2, domain.VerdictNo)
		require.NoError(t, err)
		progression.ClearDomainEvents()
		require.NoError(t, f.repo.Save(ctx, progression))

		result, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 1})
		require.NoError(t, err)

		assert.Equal(t, OutcomeBlocked, result.Outcome)
		assert.Contains(t, result.Reason, "rejected")
	})

	t.Run("rejects booking ahead of the current round", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)

		_, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 2})
		assert.ErrorIs(t, err, domain.ErrRoundNotCurrent)
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())
		progression := seedProgression(t, f.repo)
		f.repo.findErr = errors.New("connection refused")

		_, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: progression.ID(), RoundIndex: 0})
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("unknown progression is an error", func(t *testing.T) {
		f := newBookingFixture(t, DefaultBookingConfig())

		_, err := f.handler.Handle(ctx, BookRoundCommand{ProgressionID: uuid.New(), RoundIndex: 0})
		assert.ErrorIs(t, err, domain.ErrProgressionNotFound)
	})
}
