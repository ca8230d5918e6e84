package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExpertiseCategory groups interviewer expertise tags into the three
// categories the round sequence draws from.
type ExpertiseCategory string

const (
	CategoryEngineering ExpertiseCategory = "Engineering"
	CategoryManagement  ExpertiseCategory = "Management"
	CategoryHR          ExpertiseCategory = "HR"
)

// InterviewerProfile describes one interviewer and their expertise tags.
// Reference data consulted by the assignment policy, never mutated.
type InterviewerProfile struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Expertise  []string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	engineeringTags  = []string{"engineering", "technical", "developer", "software", "programming"}
	engineeringDepts = []string{"engineering", "technical", "development", "software"}
	managementTags   = []string{"management", "manager", "lead", "director", "supervisor"}
	managementDepts  = []string{"management", "leadership", "executive"}
	hrTags           = []string{"hr", "human resources", "people", "recruiting", "talent"}
	hrDepts          = []string{"hr", "human resources", "people", "recruiting"}
)

// MatchesCategory reports whether the interviewer's expertise tags, or
// failing that their department, place them in the given category.
func (p InterviewerProfile) MatchesCategory(category ExpertiseCategory) bool {
	var tags, depts []string
	switch category {
	case CategoryEngineering:
		tags, depts = engineeringTags, engineeringDepts
	case CategoryManagement:
		tags, depts = managementTags, managementDepts
	case CategoryHR:
		tags, depts = hrTags, hrDepts
	default:
		return false
	}

	for _, exp := range p.Expertise {
		if containsFold(tags, exp) {
			return true
		}
	}
	return containsFold(depts, p.Department)
}

func containsFold(values []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
