package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrInterviewerNotFound = errors.New("interviewer not found")
)

// CandidateStore provides read access to candidate reference data.
type CandidateStore interface {
	GetCandidatesByJob(ctx context.Context, jobID uuid.UUID) ([]CandidateRecord, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*CandidateRecord, error)
	SaveCandidate(ctx context.Context, candidate CandidateRecord) error
}

// JobStore provides read access to job postings.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*JobPosting, error)
	SaveJob(ctx context.Context, job JobPosting) error
}

// InterviewerStore provides read access to the interviewer pool.
type InterviewerStore interface {
	GetAllInterviewers(ctx context.Context) ([]InterviewerProfile, error)
	SaveInterviewer(ctx context.Context, profile InterviewerProfile) error
}
