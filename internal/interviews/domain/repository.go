package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProgressionNotFound is returned when a progression does not exist.
var ErrProgressionNotFound = errors.New("progression not found")

// ProgressionRepository persists interview progressions.
type ProgressionRepository interface {
	Save(ctx context.Context, progression *Progression) error
	FindByID(ctx context.Context, id uuid.UUID) (*Progression, error)
	FindByJobAndCandidate(ctx context.Context, jobID, candidateID uuid.UUID) (*Progression, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]*Progression, error)
	FindByStatus(ctx context.Context, status Status) ([]*Progression, error)
	FindAll(ctx context.Context) ([]*Progression, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
