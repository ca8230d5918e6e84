package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
)

// InMemoryProgressionRepository keeps progressions in a map, for tests
// and local development.
type InMemoryProgressionRepository struct {
	mu           sync.RWMutex
	progressions map[uuid.UUID]*domain.Progression
}

// NewInMemoryProgressionRepository creates an empty repository.
func NewInMemoryProgressionRepository() *InMemoryProgressionRepository {
	return &InMemoryProgressionRepository{
		progressions: make(map[uuid.UUID]*domain.Progression),
	}
}

// Save stores the progression.
func (r *InMemoryProgressionRepository) Save(_ context.Context, progression *domain.Progression) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progressions[progression.ID()] = progression
	return nil
}

// FindByID returns the progression with the given ID.
func (r *InMemoryProgressionRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Progression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	progression, ok := r.progressions[id]
	if !ok {
		return nil, domain.ErrProgressionNotFound
	}
	return progression, nil
}

// FindByJobAndCandidate returns the progression for a (job, candidate)
// pair.
func (r *InMemoryProgressionRepository) FindByJobAndCandidate(_ context.Context, jobID, candidateID uuid.UUID) (*domain.Progression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, progression := range r.progressions {
		if progression.JobID() == jobID && progression.CandidateID() == candidateID {
			return progression, nil
		}
	}
	return nil, domain.ErrProgressionNotFound
}

// FindByJob returns all progressions for a job, oldest first.
func (r *InMemoryProgressionRepository) FindByJob(_ context.Context, jobID uuid.UUID) ([]*domain.Progression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Progression
	for _, progression := range r.progressions {
		if progression.JobID() == jobID {
			out = append(out, progression)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// FindByStatus returns all progressions in the given status, oldest first.
func (r *InMemoryProgressionRepository) FindByStatus(_ context.Context, status domain.Status) ([]*domain.Progression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Progression
	for _, progression := range r.progressions {
		if progression.Status() == status {
			out = append(out, progression)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// FindAll returns every progression, oldest first.
func (r *InMemoryProgressionRepository) FindAll(_ context.Context) ([]*domain.Progression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Progression, 0, len(r.progressions))
	for _, progression := range r.progressions {
		out = append(out, progression)
	}
	sortByCreatedAt(out)
	return out, nil
}

// Delete removes a progression.
func (r *InMemoryProgressionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.progressions[id]; !ok {
		return domain.ErrProgressionNotFound
	}
	delete(r.progressions, id)
	return nil
}

func sortByCreatedAt(progressions []*domain.Progression) {
	sort.Slice(progressions, func(i, j int) bool {
		if progressions[i].CreatedAt().Equal(progressions[j].CreatedAt()) {
			return progressions[i].ID().String() < progressions[j].ID().String()
		}
		return progressions[i].CreatedAt().Before(progressions[j].CreatedAt())
	})
}
