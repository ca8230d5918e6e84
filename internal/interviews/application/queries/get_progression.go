package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
)

// GetProgressionQuery fetches one progression by ID.
type GetProgressionQuery struct {
	ProgressionID uuid.UUID
}

// GetProgressionHandler handles the GetProgressionQuery.
type GetProgressionHandler struct {
	progressionRepo domain.ProgressionRepository
}

// NewGetProgressionHandler creates a new handler.
func NewGetProgressionHandler(progressionRepo domain.ProgressionRepository) *GetProgressionHandler {
	return &GetProgressionHandler{progressionRepo: progressionRepo}
}

// Handle executes the query.
func (h *GetProgressionHandler) Handle(ctx context.Context, query GetProgressionQuery) (*ProgressionView, error) {
	progression, err := h.progressionRepo.FindByID(ctx, query.ProgressionID)
	if err != nil {
		return nil, err
	}
	view := toView(progression)
	return &view, nil
}
