package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
)

// RescheduleRoundCommand moves a booked round to a new time.
type RescheduleRoundCommand struct {
	ProgressionID uuid.UUID
	RoundIndex    int
	NewTime       time.Time
	Reason        string
}

// RescheduleRoundHandler cancels the existing calendar event, clears the
// round's booking, and books it again at the requested time.
type RescheduleRoundHandler struct {
	progressionRepo domain.ProgressionRepository
	calendar        availabilityApp.CalendarCollaborator
	bookRound       *BookRoundHandler
	outboxRepo      outbox.Repository
	uow             sharedApplication.UnitOfWork
	locker          lock.Locker
	logger          *slog.Logger
}

// NewRescheduleRoundHandler creates a new handler.
func NewRescheduleRoundHandler(
	progressionRepo domain.ProgressionRepository,
	calendar availabilityApp.CalendarCollaborator,
	bookRound *BookRoundHandler,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	logger *slog.Logger,
) *RescheduleRoundHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RescheduleRoundHandler{
		progressionRepo: progressionRepo,
		calendar:        calendar,
		bookRound:       bookRound,
		outboxRepo:      outboxRepo,
		uow:             uow,
		locker:          locker,
		logger:          logger,
	}
}

// Handle executes the command. The old event is deleted best-effort; a
// provider failure there never blocks the rebooking.
func (h *RescheduleRoundHandler) Handle(ctx context.Context, cmd RescheduleRoundCommand) (*BookRoundResult, error) {
	if err := h.clearExisting(ctx, cmd); err != nil {
		return nil, err
	}

	newTime := cmd.NewTime
	return h.bookRound.Handle(ctx, BookRoundCommand{
		ProgressionID: cmd.ProgressionID,
		RoundIndex:    cmd.RoundIndex,
		PreferredTime: &newTime,
	})
}

func (h *RescheduleRoundHandler) clearExisting(ctx context.Context, cmd RescheduleRoundCommand) error {
	release, err := h.locker.Acquire(ctx, cmd.ProgressionID)
	if err != nil {
		return err
	}
	defer release()

	progression, err := h.progressionRepo.FindByID(ctx, cmd.ProgressionID)
	if err != nil {
		return err
	}
	round, err := progression.Round(cmd.RoundIndex)
	if err != nil {
		return err
	}
	booking := round.Booking()
	if booking == nil {
		return domain.ErrRoundNotBooked
	}

	if booking.EventID != "" {
		if err := h.calendar.DeleteEvent(ctx, booking.EventID); err != nil {
			h.logger.Warn("failed to delete calendar event during reschedule",
				"progression_id", progression.ID(),
				"event_id", booking.EventID,
				"error", err,
			)
		}
	}

	if err := progression.ClearBooking(cmd.RoundIndex); err != nil {
		return err
	}
	if err := progression.MarkRescheduled(cmd.RoundIndex, cmd.Reason); err != nil {
		return err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		if err := h.progressionRepo.Save(ctx, progression); err != nil {
			return err
		}
		msgs, err := outbox.FromEvents(progression.DomainEvents())
		if err != nil {
			return err
		}
		return h.outboxRepo.SaveBatch(ctx, msgs)
	})
	if err != nil {
		return err
	}
	progression.ClearDomainEvents()
	return nil
}
