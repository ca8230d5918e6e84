package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobPosting is an open position candidates interview for.
type JobPosting struct {
	ID                uuid.UUID
	RoleName          string
	Description       string
	YearsOfExperience string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
