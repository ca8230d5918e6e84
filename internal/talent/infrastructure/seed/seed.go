package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hiresync/hiresync/internal/talent/domain"
)

// File is the on-disk seed format: jobs, their candidates, and the
// interviewer pool.
type File struct {
	Jobs         []JobEntry         `yaml:"jobs"`
	Candidates   []CandidateEntry   `yaml:"candidates"`
	Interviewers []InterviewerEntry `yaml:"interviewers"`
}

// JobEntry is one job posting in the seed file.
type JobEntry struct {
	ID                string `yaml:"id"`
	Role              string `yaml:"role"`
	Description       string `yaml:"description"`
	YearsOfExperience string `yaml:"years_of_experience"`
}

// CandidateEntry is one candidate in the seed file.
type CandidateEntry struct {
	ID              string   `yaml:"id"`
	JobID           string   `yaml:"job_id"`
	Name            string   `yaml:"name"`
	Email           string   `yaml:"email"`
	FitScore        int      `yaml:"fit_score"`
	ExperienceYears float64  `yaml:"experience_years"`
	Skills          []string `yaml:"skills"`
}

// InterviewerEntry is one interviewer in the seed file.
type InterviewerEntry struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Email      string   `yaml:"email"`
	Expertise  []string `yaml:"expertise"`
	Department string   `yaml:"department"`
}

// Load parses a seed file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &file, nil
}

// Stores groups the three talent ports a seed run writes to.
type Stores struct {
	Jobs         domain.JobStore
	Candidates   domain.CandidateStore
	Interviewers domain.InterviewerStore
}

// Apply writes the seed data into the stores. Missing IDs are generated;
// invalid ones are an error so typos don't silently fork records.
func Apply(ctx context.Context, file *File, stores Stores) error {
	for _, entry := range file.Jobs {
		id, err := parseOrNewID(entry.ID)
		if err != nil {
			return fmt.Errorf("job %q: %w", entry.Role, err)
		}
		err = stores.Jobs.SaveJob(ctx, domain.JobPosting{
			ID:                id,
			RoleName:          entry.Role,
			Description:       entry.Description,
			YearsOfExperience: entry.YearsOfExperience,
		})
		if err != nil {
			return err
		}
	}

	for _, entry := range file.Candidates {
		id, err := parseOrNewID(entry.ID)
		if err != nil {
			return fmt.Errorf("candidate %q: %w", entry.Name, err)
		}
		jobID, err := uuid.Parse(entry.JobID)
		if err != nil {
			return fmt.Errorf("candidate %q: invalid job_id: %w", entry.Name, err)
		}
		err = stores.Candidates.SaveCandidate(ctx, domain.CandidateRecord{
			ID:              id,
			JobID:           jobID,
			Name:            entry.Name,
			Email:           entry.Email,
			FitScore:        entry.FitScore,
			ExperienceYears: entry.ExperienceYears,
			Skills:          entry.Skills,
		})
		if err != nil {
			return err
		}
	}

	for _, entry := range file.Interviewers {
		id, err := parseOrNewID(entry.ID)
		if err != nil {
			return fmt.Errorf("interviewer %q: %w", entry.Name, err)
		}
		err = stores.Interviewers.SaveInterviewer(ctx, domain.InterviewerProfile{
			ID:         id,
			Name:       entry.Name,
			Email:      entry.Email,
			Expertise:  entry.Expertise,
			Department: entry.Department,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func parseOrNewID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}
