package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	availabilityApp "github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
)

// DeleteProgressionCommand removes a progression entirely.
type DeleteProgressionCommand struct {
	ProgressionID uuid.UUID
}

// DeleteProgressionHandler deletes a progression and best-effort cleans
// up any calendar events its rounds still hold.
type DeleteProgressionHandler struct {
	progressionRepo domain.ProgressionRepository
	calendar        availabilityApp.CalendarCollaborator
	uow             sharedApplication.UnitOfWork
	locker          lock.Locker
	logger          *slog.Logger
}

// NewDeleteProgressionHandler creates a new handler.
func NewDeleteProgressionHandler(
	progressionRepo domain.ProgressionRepository,
	calendar availabilityApp.CalendarCollaborator,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	logger *slog.Logger,
) *DeleteProgressionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteProgressionHandler{
		progressionRepo: progressionRepo,
		calendar:        calendar,
		uow:             uow,
		locker:          locker,
		logger:          logger,
	}
}

// Handle executes the command.
func (h *DeleteProgressionHandler) Handle(ctx context.Context, cmd DeleteProgressionCommand) error {
	release, err := h.locker.Acquire(ctx, cmd.ProgressionID)
	if err != nil {
		return err
	}
	defer release()

	progression, err := h.progressionRepo.FindByID(ctx, cmd.ProgressionID)
	if err != nil {
		return err
	}

	for _, round := range progression.Rounds() {
		booking := round.Booking()
		if booking == nil || booking.EventID == "" {
			continue
		}
		if err := h.calendar.DeleteEvent(ctx, booking.EventID); err != nil {
			h.logger.Warn("failed to delete calendar event during progression delete",
				"progression_id", progression.ID(),
				"event_id", booking.EventID,
				"error", err,
			)
		}
	}

	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		return h.progressionRepo.Delete(ctx, progression.ID())
	})
}
