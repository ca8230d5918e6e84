package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/talent/domain"
)

// InMemoryStore keeps jobs, candidates and interviewers in maps, for
// tests and local development. It implements all three store ports.
type InMemoryStore struct {
	mu           sync.RWMutex
	jobs         map[uuid.UUID]domain.JobPosting
	candidates   map[uuid.UUID]domain.CandidateRecord
	interviewers []domain.InterviewerProfile
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		jobs:       make(map[uuid.UUID]domain.JobPosting),
		candidates: make(map[uuid.UUID]domain.CandidateRecord),
	}
}

// GetJob returns the job with the given ID.
func (s *InMemoryStore) GetJob(_ context.Context, id uuid.UUID) (*domain.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &job, nil
}

// SaveJob stores a job posting.
func (s *InMemoryStore) SaveJob(_ context.Context, job domain.JobPosting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

// GetCandidatesByJob returns candidates for a job in insertion order.
func (s *InMemoryStore) GetCandidatesByJob(_ context.Context, jobID uuid.UUID) ([]domain.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CandidateRecord
	for _, candidate := range s.candidates {
		if candidate.JobID == jobID {
			out = append(out, candidate)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetCandidate returns one candidate by ID.
func (s *InMemoryStore) GetCandidate(_ context.Context, id uuid.UUID) (*domain.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	return &candidate, nil
}

// SaveCandidate stores a candidate record.
func (s *InMemoryStore) SaveCandidate(_ context.Context, candidate domain.CandidateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = candidate
	return nil
}

// GetAllInterviewers returns the interviewer pool in insertion order.
func (s *InMemoryStore) GetAllInterviewers(_ context.Context) ([]domain.InterviewerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.InterviewerProfile, len(s.interviewers))
	copy(out, s.interviewers)
	return out, nil
}

// SaveInterviewer appends or replaces an interviewer profile.
func (s *InMemoryStore) SaveInterviewer(_ context.Context, profile domain.InterviewerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.interviewers {
		if s.interviewers[i].ID == profile.ID {
			s.interviewers[i] = profile
			return nil
		}
	}
	s.interviewers = append(s.interviewers, profile)
	return nil
}
