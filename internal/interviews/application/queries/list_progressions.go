package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
)

// ListProgressionsQuery lists progressions, optionally filtered by job
// and/or status.
type ListProgressionsQuery struct {
	JobID  *uuid.UUID
	Status *domain.Status
}

// ListProgressionsHandler handles the ListProgressionsQuery.
type ListProgressionsHandler struct {
	progressionRepo domain.ProgressionRepository
}

// NewListProgressionsHandler creates a new handler.
func NewListProgressionsHandler(progressionRepo domain.ProgressionRepository) *ListProgressionsHandler {
	return &ListProgressionsHandler{progressionRepo: progressionRepo}
}

// Handle executes the query.
func (h *ListProgressionsHandler) Handle(ctx context.Context, query ListProgressionsQuery) ([]ProgressionView, error) {
	var (
		progressions []*domain.Progression
		err          error
	)
	switch {
	case query.JobID != nil:
		progressions, err = h.progressionRepo.FindByJob(ctx, *query.JobID)
	case query.Status != nil:
		progressions, err = h.progressionRepo.FindByStatus(ctx, *query.Status)
	default:
		progressions, err = h.progressionRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	views := make([]ProgressionView, 0, len(progressions))
	for _, progression := range progressions {
		if query.JobID != nil && query.Status != nil && progression.Status() != *query.Status {
			continue
		}
		views = append(views, toView(progression))
	}
	return views, nil
}
