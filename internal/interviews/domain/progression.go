package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	sharedDomain "github.com/hiresync/hiresync/internal/shared/domain"
)

var (
	ErrEmptyCandidateName   = errors.New("candidate name cannot be empty")
	ErrEmptyCandidateEmail  = errors.New("candidate email cannot be empty")
	ErrInvalidRoundCount    = errors.New("rounds total must be between 2 and 4")
	ErrInvalidRoundIndex    = errors.New("round index out of range")
	ErrInvalidRating        = errors.New("rating must be between 1 and 10")
	ErrInvalidVerdict       = errors.New("invalid verdict")
	ErrInvalidPreferredTime = errors.New("invalid preferred time")
	ErrRoundNotCurrent      = errors.New("round is ahead of the next round to execute")
	ErrRoundAlreadyBooked   = errors.New("round already has an active booking")
	ErrRoundNotBooked       = errors.New("round has no active booking")
	ErrProgressionClosed    = errors.New("progression is in a terminal state")
)

// MinRounds and MaxRounds bound the supported round counts. Requests
// outside the range are clamped by the assignment policy before a
// progression is created.
const (
	MinRounds = 2
	MaxRounds = 4
)

// Status tracks where a progression stands in its lifecycle.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusPassed     Status = "passed"
	StatusRejected   Status = "rejected"
	StatusSelected   Status = "selected"
	StatusCompleted  Status = "completed"
)

// IsTerminal reports whether no further rounds may be booked.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusSelected, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValid checks if the status is supported.
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusPassed, StatusRejected, StatusSelected, StatusCompleted:
		return true
	default:
		return false
	}
}

// Progression tracks one candidate's round-by-round progress for one job.
// It owns its rounds; all booking and feedback mutation goes through it.
type Progression struct {
	sharedDomain.BaseAggregateRoot
	jobID                 uuid.UUID
	candidateID           uuid.UUID
	candidateName         string
	candidateEmail        string
	jobRole               string
	roundsTotal           int
	rounds                []*Round
	completedRounds       int
	nextRoundIndex        int
	status                Status
	currentRoundScheduled bool
}

// NewProgression creates a progression with one round per assignment, all
// unbooked. The caller books round 0 separately.
func NewProgression(jobID, candidateID uuid.UUID, candidateName, candidateEmail, jobRole string, assignments []RoundAssignment) (*Progression, error) {
	candidateName = strings.TrimSpace(candidateName)
	if candidateName == "" {
		return nil, ErrEmptyCandidateName
	}
	candidateEmail = strings.TrimSpace(candidateEmail)
	if candidateEmail == "" {
		return nil, ErrEmptyCandidateEmail
	}
	if len(assignments) < MinRounds || len(assignments) > MaxRounds {
		return nil, ErrInvalidRoundCount
	}

	rounds := make([]*Round, 0, len(assignments))
	for i, assignment := range assignments {
		rounds = append(rounds, newRound(i+1, assignment))
	}

	progression := &Progression{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		jobID:             jobID,
		candidateID:       candidateID,
		candidateName:     candidateName,
		candidateEmail:    candidateEmail,
		jobRole:           jobRole,
		roundsTotal:       len(assignments),
		rounds:            rounds,
		completedRounds:   0,
		nextRoundIndex:    0,
		status:            StatusScheduled,
	}

	progression.AddDomainEvent(NewProgressionCreated(progression))
	return progression, nil
}

// RehydrateProgression recreates a progression from persisted state.
func RehydrateProgression(
	base sharedDomain.BaseEntity,
	jobID, candidateID uuid.UUID,
	candidateName, candidateEmail, jobRole string,
	rounds []*Round,
	completedRounds, nextRoundIndex int,
	status Status,
	currentRoundScheduled bool,
) *Progression {
	return &Progression{
		BaseAggregateRoot:     sharedDomain.RehydrateBaseAggregateRoot(base),
		jobID:                 jobID,
		candidateID:           candidateID,
		candidateName:         candidateName,
		candidateEmail:        candidateEmail,
		jobRole:               jobRole,
		roundsTotal:           len(rounds),
		rounds:                rounds,
		completedRounds:       completedRounds,
		nextRoundIndex:        nextRoundIndex,
		status:                status,
		currentRoundScheduled: currentRoundScheduled,
	}
}

// Getters
func (p *Progression) JobID() uuid.UUID            { return p.jobID }
func (p *Progression) CandidateID() uuid.UUID      { return p.candidateID }
func (p *Progression) CandidateName() string       { return p.candidateName }
func (p *Progression) CandidateEmail() string      { return p.candidateEmail }
func (p *Progression) JobRole() string             { return p.jobRole }
func (p *Progression) RoundsTotal() int            { return p.roundsTotal }
func (p *Progression) Rounds() []*Round            { return p.rounds }
func (p *Progression) CompletedRounds() int        { return p.completedRounds }
func (p *Progression) NextRoundIndex() int         { return p.nextRoundIndex }
func (p *Progression) Status() Status              { return p.status }
func (p *Progression) CurrentRoundScheduled() bool { return p.currentRoundScheduled }

// IsTerminal reports whether the progression accepts no further bookings.
func (p *Progression) IsTerminal() bool { return p.status.IsTerminal() }

// Round returns the round at the given zero-based index.
func (p *Progression) Round(index int) (*Round, error) {
	if index < 0 || index >= p.roundsTotal {
		return nil, ErrInvalidRoundIndex
	}
	return p.rounds[index], nil
}

// RecordBooking stores calendar details on the round at index. The round
// must be at or before the next round to execute and must not already
// carry an active booking.
func (p *Progression) RecordBooking(index int, booking Booking) error {
	if p.IsTerminal() {
		return ErrProgressionClosed
	}
	round, err := p.Round(index)
	if err != nil {
		return err
	}
	if index > p.nextRoundIndex {
		return ErrRoundNotCurrent
	}
	if round.IsBooked() {
		return ErrRoundAlreadyBooked
	}

	round.booking = &booking
	if index == p.nextRoundIndex {
		p.currentRoundScheduled = true
	}
	if p.status == StatusPassed {
		p.status = StatusInProgress
	}
	p.Touch()
	p.AddDomainEvent(NewRoundBooked(p, round))
	return nil
}

// ClearBooking removes the booking from the round at index. Counters and
// status are untouched so the round can be booked again.
func (p *Progression) ClearBooking(index int) error {
	round, err := p.Round(index)
	if err != nil {
		return err
	}
	if !round.IsBooked() {
		return ErrRoundNotBooked
	}

	cleared := *round.booking
	round.booking = nil
	if index == p.nextRoundIndex {
		p.currentRoundScheduled = false
	}
	p.Touch()
	p.AddDomainEvent(NewRoundBookingCleared(p, round, cleared.EventID))
	return nil
}

// MarkRescheduled tags the round at index with a reschedule reason.
func (p *Progression) MarkRescheduled(index int, reason string) error {
	round, err := p.Round(index)
	if err != nil {
		return err
	}
	round.rescheduled = true
	round.rescheduleReason = strings.TrimSpace(reason)
	p.Touch()
	return nil
}

// SubmitFeedback records the interviewer's decision on the round at index
// and advances the state machine when the round is the current one. The
// returned flag tells the caller to book the next round.
func (p *Progression) SubmitFeedback(index int, feedback string, rating int, verdict Verdict) (bool, error) {
	if p.IsTerminal() {
		return false, ErrProgressionClosed
	}
	round, err := p.Round(index)
	if err != nil {
		return false, err
	}
	if !verdict.IsValid() {
		return false, ErrInvalidVerdict
	}
	if rating < 1 || rating > 10 {
		return false, ErrInvalidRating
	}
	if !round.IsBooked() {
		return false, ErrRoundNotBooked
	}

	hadDecision := round.HasDecision()
	round.decision = &Decision{
		Feedback: strings.TrimSpace(feedback),
		Rating:   rating,
		Verdict:  verdict,
	}

	wasCurrent := index == p.nextRoundIndex
	if wasCurrent && !hadDecision {
		p.completedRounds++
		p.nextRoundIndex++
		p.currentRoundScheduled = false
	}

	p.status = p.deriveStatus(verdict)
	p.Touch()
	p.AddDomainEvent(NewFeedbackSubmitted(p, round))

	advanced := wasCurrent && p.status == StatusPassed
	if advanced {
		p.AddDomainEvent(NewProgressionAdvanced(p))
	}
	if p.IsTerminal() {
		p.AddDomainEvent(NewProgressionClosed(p))
	}
	return advanced, nil
}

// deriveStatus applies the status precedence after a feedback submission.
// A "no" verdict rejects on any round, the final one included; completed is
// reached only when every round is done without a rejection but not every
// verdict is a yes.
func (p *Progression) deriveStatus(latest Verdict) Status {
	if latest == VerdictNo {
		return StatusRejected
	}
	if p.completedRounds >= p.roundsTotal {
		if p.allRoundsSelected() {
			return StatusSelected
		}
		return StatusCompleted
	}
	if latest == VerdictYes {
		return StatusPassed
	}
	return StatusInProgress
}

func (p *Progression) allRoundsSelected() bool {
	for _, round := range p.rounds {
		if round.decision == nil || round.decision.Verdict != VerdictYes {
			return false
		}
	}
	return true
}
