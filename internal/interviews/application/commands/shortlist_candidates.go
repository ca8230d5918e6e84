package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/application/services"
	"github.com/hiresync/hiresync/internal/interviews/domain"
	sharedApplication "github.com/hiresync/hiresync/internal/shared/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/outbox"
	talentDomain "github.com/hiresync/hiresync/internal/talent/domain"
)

// ShortlistCandidatesCommand ranks a job's candidates by fit score and
// starts an interview progression for the top K.
type ShortlistCandidatesCommand struct {
	JobID              uuid.UUID
	TopK               int
	RoundsTotal        int
	PinnedInterviewers []uuid.UUID
}

// RankedCandidate is one entry of the shortlist, in rank order.
type RankedCandidate struct {
	CandidateID uuid.UUID
	Name        string
	Email       string
	FitScore    int
}

// ShortlistResult reports the ranked selection and what was done per
// candidate. A candidate already holding a progression for the job is
// reused, never duplicated.
type ShortlistResult struct {
	JobID       uuid.UUID
	JobRole     string
	RoundsTotal int
	// Clamped is set when the requested round count was adjusted.
	Clamped  bool
	Ranked   []RankedCandidate
	Created  []uuid.UUID
	Reused   []uuid.UUID
	Bookings []BookRoundResult
}

// ShortlistCandidatesHandler seeds progressions for the top candidates
// of a job and books round 0 for each new one.
type ShortlistCandidatesHandler struct {
	candidateStore   talentDomain.CandidateStore
	jobStore         talentDomain.JobStore
	interviewerStore talentDomain.InterviewerStore
	planner          *services.RoundPlanner
	progressionRepo  domain.ProgressionRepository
	bookRound        *BookRoundHandler
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
	logger           *slog.Logger
}

// NewShortlistCandidatesHandler creates a new handler.
func NewShortlistCandidatesHandler(
	candidateStore talentDomain.CandidateStore,
	jobStore talentDomain.JobStore,
	interviewerStore talentDomain.InterviewerStore,
	planner *services.RoundPlanner,
	progressionRepo domain.ProgressionRepository,
	bookRound *BookRoundHandler,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *ShortlistCandidatesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShortlistCandidatesHandler{
		candidateStore:   candidateStore,
		jobStore:         jobStore,
		interviewerStore: interviewerStore,
		planner:          planner,
		progressionRepo:  progressionRepo,
		bookRound:        bookRound,
		outboxRepo:       outboxRepo,
		uow:              uow,
		logger:           logger,
	}
}

// Handle executes the command.
func (h *ShortlistCandidatesHandler) Handle(ctx context.Context, cmd ShortlistCandidatesCommand) (*ShortlistResult, error) {
	job, err := h.jobStore.GetJob(ctx, cmd.JobID)
	if err != nil {
		return nil, err
	}

	candidates, err := h.candidateStore.GetCandidatesByJob(ctx, cmd.JobID)
	if err != nil {
		return nil, err
	}
	// Stable sort keeps fetch order among equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FitScore > candidates[j].FitScore
	})

	topK := cmd.TopK
	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}
	selected := candidates[:topK]

	pool, err := h.interviewerStore.GetAllInterviewers(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := h.planner.Plan(cmd.RoundsTotal, pool, cmd.PinnedInterviewers)
	if err != nil {
		return nil, err
	}
	if plan.Clamped {
		h.logger.Warn("requested round count clamped",
			"job_id", cmd.JobID,
			"requested", cmd.RoundsTotal,
			"rounds_total", plan.RoundsTotal,
		)
	}

	result := &ShortlistResult{
		JobID:       cmd.JobID,
		JobRole:     job.RoleName,
		RoundsTotal: plan.RoundsTotal,
		Clamped:     plan.Clamped,
	}

	for _, candidate := range selected {
		result.Ranked = append(result.Ranked, RankedCandidate{
			CandidateID: candidate.ID,
			Name:        candidate.Name,
			Email:       candidate.Email,
			FitScore:    candidate.FitScore,
		})

		existing, err := h.progressionRepo.FindByJobAndCandidate(ctx, cmd.JobID, candidate.ID)
		if err == nil {
			result.Reused = append(result.Reused, existing.ID())
			continue
		}
		if !errors.Is(err, domain.ErrProgressionNotFound) {
			return nil, err
		}

		progression, err := domain.NewProgression(cmd.JobID, candidate.ID, candidate.Name, candidate.Email, job.RoleName, plan.Assignments)
		if err != nil {
			return nil, err
		}
		if err := h.persist(ctx, progression); err != nil {
			return nil, err
		}
		result.Created = append(result.Created, progression.ID())

		booking, err := h.bookRound.Handle(ctx, BookRoundCommand{
			ProgressionID: progression.ID(),
			RoundIndex:    0,
		})
		if err != nil {
			h.logger.Warn("round 0 booking failed during shortlisting",
				"progression_id", progression.ID(),
				"error", err,
			)
			continue
		}
		result.Bookings = append(result.Bookings, *booking)
	}

	return result, nil
}

func (h *ShortlistCandidatesHandler) persist(ctx context.Context, progression *domain.Progression) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
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
