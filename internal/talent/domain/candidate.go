package domain

import (
	"time"

	"github.com/google/uuid"
)

// CandidateRecord is an applicant for a job, carrying the externally
// computed fit score the shortlister ranks by. Reference data: the engine
// reads candidates, it never mutates them.
type CandidateRecord struct {
	ID              uuid.UUID
	JobID           uuid.UUID
	Name            string
	Email           string
	FitScore        int
	ExperienceYears float64
	Skills          []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
