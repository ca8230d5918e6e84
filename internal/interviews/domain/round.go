package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoundType names the kind of interview a round represents.
type RoundType string

const (
	RoundTechnical RoundType = "Technical"
	RoundManager   RoundType = "Manager"
	RoundHR        RoundType = "HR"
)

// IsValid checks if the round type is supported.
func (t RoundType) IsValid() bool {
	switch t {
	case RoundTechnical, RoundManager, RoundHR:
		return true
	default:
		return false
	}
}

// Verdict is the interviewer's call on whether the candidate advances.
type Verdict string

const (
	VerdictYes     Verdict = "yes"
	VerdictNo      Verdict = "no"
	VerdictPending Verdict = "pending"
)

// IsValid checks if the verdict is supported.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictYes, VerdictNo, VerdictPending:
		return true
	default:
		return false
	}
}

// Booking holds the calendar details of a scheduled round.
type Booking struct {
	EventID     string
	MeetingLink string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string
	Degraded    bool
}

// Decision holds the interviewer's submitted feedback for a round.
type Decision struct {
	Feedback string
	Rating   int
	Verdict  Verdict
}

// Round is one interview session within a progression. Rounds are owned
// exclusively by their progression and mutated only through it.
type Round struct {
	roundNumber      int
	roundType        RoundType
	interviewerID    uuid.UUID
	interviewerName  string
	interviewerEmail string
	department       string
	booking          *Booking
	decision         *Decision
	rescheduled      bool
	rescheduleReason string
}

// RoundAssignment pairs a round type with the interviewer chosen for it.
type RoundAssignment struct {
	RoundType        RoundType
	InterviewerID    uuid.UUID
	InterviewerName  string
	InterviewerEmail string
	Department       string
}

func newRound(roundNumber int, assignment RoundAssignment) *Round {
	return &Round{
		roundNumber:      roundNumber,
		roundType:        assignment.RoundType,
		interviewerID:    assignment.InterviewerID,
		interviewerName:  assignment.InterviewerName,
		interviewerEmail: assignment.InterviewerEmail,
		department:       assignment.Department,
	}
}

// RehydrateRound recreates a round from persisted state.
func RehydrateRound(
	roundNumber int,
	roundType RoundType,
	interviewerID uuid.UUID,
	interviewerName, interviewerEmail, department string,
	booking *Booking,
	decision *Decision,
	rescheduled bool,
	rescheduleReason string,
) *Round {
	return &Round{
		roundNumber:      roundNumber,
		roundType:        roundType,
		interviewerID:    interviewerID,
		interviewerName:  interviewerName,
		interviewerEmail: interviewerEmail,
		department:       department,
		booking:          booking,
		decision:         decision,
		rescheduled:      rescheduled,
		rescheduleReason: rescheduleReason,
	}
}

// Getters
func (r *Round) RoundNumber() int         { return r.roundNumber }
func (r *Round) RoundType() RoundType     { return r.roundType }
func (r *Round) InterviewerID() uuid.UUID { return r.interviewerID }
func (r *Round) InterviewerName() string  { return r.interviewerName }
func (r *Round) InterviewerEmail() string { return r.interviewerEmail }
func (r *Round) Department() string       { return r.department }
func (r *Round) Rescheduled() bool        { return r.rescheduled }
func (r *Round) RescheduleReason() string { return r.rescheduleReason }

// Booking returns a copy of the round's booking, or nil if unbooked.
func (r *Round) Booking() *Booking {
	if r.booking == nil {
		return nil
	}
	b := *r.booking
	return &b
}

// Decision returns a copy of the round's decision, or nil if none submitted.
func (r *Round) Decision() *Decision {
	if r.decision == nil {
		return nil
	}
	d := *r.decision
	return &d
}

// IsBooked reports whether the round has an active booking.
func (r *Round) IsBooked() bool { return r.booking != nil }

// HasDecision reports whether feedback has been submitted for the round.
func (r *Round) HasDecision() bool { return r.decision != nil }
