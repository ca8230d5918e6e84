package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
)

// CancelRoundCommand removes a round's booking without rebooking it.
type CancelRoundCommand struct {
	ProgressionID uuid.UUID
	RoundIndex    int
	Reason        string
}

// CancelRoundResult reports the cancellation.
type CancelRoundResult struct {
	ProgressionID uuid.UUID
	RoundNumber   int
	EventDeleted  bool
}

// CancelRoundHandler deletes the calendar event best-effort and clears
// the round's booking fields. Status and counters are untouched.
type CancelRoundHandler struct {
	progressionRepo domain.ProgressionRepository
	calendar        availabilityApp.CalendarCollaborator
	outboxRepo      outbox.Repository
	uow             sharedApplication.UnitOfWork
	locker          lock.Locker
	logger          *slog.Logger
}

// NewCancelRoundHandler creates a new handler.
func NewCancelRoundHandler(
	progressionRepo domain.ProgressionRepository,
	calendar availabilityApp.CalendarCollaborator,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	logger *slog.Logger,
) *CancelRoundHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CancelRoundHandler{
		progressionRepo: progressionRepo,
		calendar:        calendar,
		outboxRepo:      outboxRepo,
		uow:             uow,
		locker:          locker,
		logger:          logger,
	}
}

// Handle executes the command.
func (h *CancelRoundHandler) Handle(ctx context.Context, cmd CancelRoundCommand) (*CancelRoundResult, error) {
	release, err := h.locker.Acquire(ctx, cmd.ProgressionID)
	if err != nil {
		return nil, err
	}
	defer release()

	progression, err := h.progressionRepo.FindByID(ctx, cmd.ProgressionID)
	if err != nil {
		return nil, err
	}
	round, err := progression.Round(cmd.RoundIndex)
	if err != nil {
		return nil, err
	}
	booking := round.Booking()
	if booking == nil {
		return nil, domain.ErrRoundNotBooked
	}

	eventDeleted := false
	if booking.EventID != "" {
		if err := h.calendar.DeleteEvent(ctx, booking.EventID); err != nil {
			h.logger.Warn("failed to delete calendar event during cancel",
				"progression_id", progression.ID(),
				"event_id", booking.EventID,
				"reason", cmd.Reason,
				"error", err,
			)
		} else {
			eventDeleted = true
		}
	}

	if err := progression.ClearBooking(cmd.RoundIndex); err != nil {
		return nil, err
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
		return nil, err
	}
	progression.ClearDomainEvents()

	return &CancelRoundResult{
		ProgressionID: progression.ID(),
		RoundNumber:   round.RoundNumber(),
		EventDeleted:  eventDeleted,
	}, nil
}
