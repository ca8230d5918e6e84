package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/lock"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
)

// SubmitFeedbackCommand records an interviewer's decision on one round.
type SubmitFeedbackCommand struct {
	ProgressionID uuid.UUID
	RoundIndex    int
	Feedback      string
	Rating        int
	Verdict       domain.Verdict
}

// SubmitFeedbackResult reports the state machine's reaction, including
// the booking attempt for the next round when the candidate advanced.
type SubmitFeedbackResult struct {
	ProgressionID   uuid.UUID
	RoundNumber     int
	Status          domain.Status
	CompletedRounds int
	NextRoundIndex  int
	Advanced        bool
	NextBooking     *BookRoundResult
}

// SubmitFeedbackHandler applies feedback to a progression and, when the
// candidate passes the current round, triggers booking of the next one.
type SubmitFeedbackHandler struct {
	progressionRepo domain.ProgressionRepository
	bookRound       *BookRoundHandler
	outboxRepo      outbox.Repository
	uow             sharedApplication.UnitOfWork
	locker          lock.Locker
	logger          *slog.Logger
}

// NewSubmitFeedbackHandler creates a new handler.
func NewSubmitFeedbackHandler(
	progressionRepo domain.ProgressionRepository,
	bookRound *BookRoundHandler,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	logger *slog.Logger,
) *SubmitFeedbackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitFeedbackHandler{
		progressionRepo: progressionRepo,
		bookRound:       bookRound,
		outboxRepo:      outboxRepo,
		uow:             uow,
		locker:          locker,
		logger:          logger,
	}
}

// Handle executes the command. The lock is released before the next
// round's booking attempt since BookRoundHandler takes it again.
func (h *SubmitFeedbackHandler) Handle(ctx context.Context, cmd SubmitFeedbackCommand) (*SubmitFeedbackResult, error) {
	result, advanced, err := h.applyFeedback(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if advanced {
		booking, err := h.bookRound.Handle(ctx, BookRoundCommand{
			ProgressionID: cmd.ProgressionID,
			RoundIndex:    result.NextRoundIndex,
		})
		if err != nil {
			h.logger.Warn("automatic booking of next round failed",
				"progression_id", cmd.ProgressionID,
				"round_index", result.NextRoundIndex,
				"error", err,
			)
		} else {
			result.NextBooking = booking
		}
	}
	return result, nil
}

func (h *SubmitFeedbackHandler) applyFeedback(ctx context.Context, cmd SubmitFeedbackCommand) (*SubmitFeedbackResult, bool, error) {
	release, err := h.locker.Acquire(ctx, cmd.ProgressionID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	progression, err := h.progressionRepo.FindByID(ctx, cmd.ProgressionID)
	if err != nil {
		return nil, false, err
	}

	advanced, err := progression.SubmitFeedback(cmd.RoundIndex, cmd.Feedback, cmd.Rating, cmd.Verdict)
	if err != nil {
		return nil, false, err
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
		return nil, false, err
	}
	progression.ClearDomainEvents()

	return &SubmitFeedbackResult{
		ProgressionID:   progression.ID(),
		RoundNumber:     cmd.RoundIndex + 1,
		Status:          progression.Status(),
		CompletedRounds: progression.CompletedRounds(),
		NextRoundIndex:  progression.NextRoundIndex(),
		Advanced:        advanced,
	}, advanced, nil
}
