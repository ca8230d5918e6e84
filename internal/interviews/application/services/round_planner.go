package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
	talentDomain "github.com/hiresync/hiresync/internal/talent/domain"
)

// ErrEmptyInterviewerPool is returned when there is nobody to assign.
var ErrEmptyInterviewerPool = errors.New("interviewer pool is empty")

// Plan is the outcome of assigning interviewers to rounds. Clamped and
// FallbackRounds make the policy's silent adjustments observable to the
// caller.
type Plan struct {
	Assignments []domain.RoundAssignment
	RoundsTotal int
	// Clamped is set when the requested round count was adjusted into
	// the supported range.
	Clamped bool
	// FallbackRounds lists zero-based round indexes where no pool member
	// matched the required expertise and a positional fallback was used.
	FallbackRounds []int
}

// RoundPlanner assigns one interviewer per round following a fixed role
// sequence. Pure over the given pool snapshot; the same inputs always
// produce the same plan.
type RoundPlanner struct{}

// NewRoundPlanner creates a round planner.
func NewRoundPlanner() *RoundPlanner {
	return &RoundPlanner{}
}

// roleSequence returns the round types for a clamped round count.
func roleSequence(roundsTotal int) []domain.RoundType {
	switch roundsTotal {
	case 2:
		return []domain.RoundType{domain.RoundManager, domain.RoundHR}
	case 3:
		return []domain.RoundType{domain.RoundTechnical, domain.RoundManager, domain.RoundHR}
	default:
		return []domain.RoundType{domain.RoundTechnical, domain.RoundTechnical, domain.RoundManager, domain.RoundHR}
	}
}

func categoryFor(roundType domain.RoundType) talentDomain.ExpertiseCategory {
	switch roundType {
	case domain.RoundTechnical:
		return talentDomain.CategoryEngineering
	case domain.RoundManager:
		return talentDomain.CategoryManagement
	default:
		return talentDomain.CategoryHR
	}
}

// Plan assigns interviewers for the requested round count. The count is
// clamped into the supported range first. When pinned covers every round
// the pinned ids are used verbatim, unknown ids falling back to the pool
// member at the round index modulo pool size.
func (p *RoundPlanner) Plan(requested int, pool []talentDomain.InterviewerProfile, pinned []uuid.UUID) (*Plan, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyInterviewerPool
	}

	roundsTotal := requested
	if roundsTotal < domain.MinRounds {
		roundsTotal = domain.MinRounds
	}
	if roundsTotal > domain.MaxRounds {
		roundsTotal = domain.MaxRounds
	}

	plan := &Plan{
		RoundsTotal: roundsTotal,
		Clamped:     roundsTotal != requested,
	}
	sequence := roleSequence(roundsTotal)

	if len(pinned) >= roundsTotal {
		for i, roundType := range sequence {
			profile, found := profileByID(pool, pinned[i])
			if !found {
				profile = pool[i%len(pool)]
			}
			plan.Assignments = append(plan.Assignments, toAssignment(roundType, profile))
		}
		return plan, nil
	}

	used := make(map[uuid.UUID]bool)
	for i, roundType := range sequence {
		profile, matched := pickForCategory(pool, categoryFor(roundType), used)
		if !matched {
			// Technical and Manager fall back to the head of the pool,
			// HR to the tail.
			if roundType == domain.RoundHR {
				profile = pool[len(pool)-1]
			} else {
				profile = pool[0]
			}
			plan.FallbackRounds = append(plan.FallbackRounds, i)
		}
		used[profile.ID] = true
		plan.Assignments = append(plan.Assignments, toAssignment(roundType, profile))
	}
	return plan, nil
}

// pickForCategory returns the first matching pool member not yet used,
// so a four-round plan gets two distinct technical interviewers when the
// pool allows it.
func pickForCategory(pool []talentDomain.InterviewerProfile, category talentDomain.ExpertiseCategory, used map[uuid.UUID]bool) (talentDomain.InterviewerProfile, bool) {
	var fallback *talentDomain.InterviewerProfile
	for i := range pool {
		if !pool[i].MatchesCategory(category) {
			continue
		}
		if used[pool[i].ID] {
			if fallback == nil {
				fallback = &pool[i]
			}
			continue
		}
		return pool[i], true
	}
	if fallback != nil {
		return *fallback, true
	}
	return talentDomain.InterviewerProfile{}, false
}

func profileByID(pool []talentDomain.InterviewerProfile, id uuid.UUID) (talentDomain.InterviewerProfile, bool) {
	for i := range pool {
		if pool[i].ID == id {
			return pool[i], true
		}
	}
	return talentDomain.InterviewerProfile{}, false
}

func toAssignment(roundType domain.RoundType, profile talentDomain.InterviewerProfile) domain.RoundAssignment {
	return domain.RoundAssignment{
		RoundType:        roundType,
		InterviewerID:    profile.ID,
		InterviewerName:  profile.Name,
		InterviewerEmail: profile.Email,
		Department:       profile.Department,
	}
}
