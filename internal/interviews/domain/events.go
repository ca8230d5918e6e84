package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/hiresync/hiresync/internal/shared/domain"
)

const aggregateType = "InterviewProgression"

// ProgressionCreated is emitted when a candidate is shortlisted into a
// new progression.
type ProgressionCreated struct {
	sharedDomain.BaseEvent
	ProgressionID  uuid.UUID `json:"progression_id"`
	JobID          uuid.UUID `json:"job_id"`
	CandidateID    uuid.UUID `json:"candidate_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	JobRole        string    `json:"job_role"`
	RoundsTotal    int       `json:"rounds_total"`
}

// NewProgressionCreated creates a ProgressionCreated event.
func NewProgressionCreated(p *Progression) *ProgressionCreated {
	return &ProgressionCreated{
		BaseEvent:      sharedDomain.NewBaseEvent(p.ID(), aggregateType, "interviews.progression.created"),
		ProgressionID:  p.ID(),
		JobID:          p.JobID(),
		CandidateID:    p.CandidateID(),
		CandidateName:  p.CandidateName(),
		CandidateEmail: p.CandidateEmail(),
		JobRole:        p.JobRole(),
		RoundsTotal:    p.RoundsTotal(),
	}
}

// RoundBooked is emitted when a round receives a calendar booking.
type RoundBooked struct {
	sharedDomain.BaseEvent
	ProgressionID    uuid.UUID `json:"progression_id"`
	CandidateName    string    `json:"candidate_name"`
	CandidateEmail   string    `json:"candidate_email"`
	JobRole          string    `json:"job_role"`
	RoundNumber      int       `json:"round_number"`
	RoundType        string    `json:"round_type"`
	InterviewerName  string    `json:"interviewer_name"`
	InterviewerEmail string    `json:"interviewer_email"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Timezone         string    `json:"timezone"`
	MeetingLink      string    `json:"meeting_link"`
	Degraded         bool      `json:"degraded"`
	Rescheduled      bool      `json:"rescheduled"`
	RescheduleReason string    `json:"reschedule_reason,omitempty"`
}

// NewRoundBooked creates a RoundBooked event.
func NewRoundBooked(p *Progression, r *Round) *RoundBooked {
	booking := r.Booking()
	return &RoundBooked{
		BaseEvent:        sharedDomain.NewBaseEvent(p.ID(), aggregateType, "interviews.round.booked"),
		ProgressionID:    p.ID(),
		CandidateName:    p.CandidateName(),
		CandidateEmail:   p.CandidateEmail(),
		JobRole:          p.JobRole(),
		RoundNumber:      r.RoundNumber(),
		RoundType:        string(r.RoundType()),
		InterviewerName:  r.InterviewerName(),
		InterviewerEmail: r.InterviewerEmail(),
		StartTime:        booking.StartTime,
		EndTime:          booking.EndTime,
		Timezone:         booking.Timezone,
		MeetingLink:      booking.MeetingLink,
		Degraded:         booking.Degraded,
		Rescheduled:      r.Rescheduled(),
		RescheduleReason: r.RescheduleReason(),
	}
}

// RoundBookingCleared is emitted when a round's booking is removed.
type RoundBookingCleared struct {
	sharedDomain.BaseEvent
	ProgressionID   uuid.UUID `json:"progression_id"`
	RoundNumber     int       `json:"round_number"`
	CalendarEventID string    `json:"event_id"`
}

// NewRoundBookingCleared creates a RoundBookingCleared event.
func NewRoundBookingCleared(p *Progression, r *Round, eventID string) *RoundBookingCleared {
	return &RoundBookingCleared{
		BaseEvent:     sharedDomain.NewBaseEvent(p.ID(), aggregateType, "interviews.round.booking_cleared"),
		ProgressionID:   p.ID(),
		RoundNumber:     r.RoundNumber(),
		CalendarEventID: eventID,
	}
}

// FeedbackSubmitted is emitted when an interviewer records a decision.
type FeedbackSubmitted struct {
	sharedDomain.BaseEvent
	ProgressionID   uuid.UUID `json:"progression_id"`
	RoundNumber     int       `json:"round_number"`
	Rating          int       `json:"rating"`
	Verdict         string    `json:"verdict"`
	Status          string    `json:"status"`
	CompletedRounds int       `json:"completed_rounds"`
}

// NewFeedbackSubmitted creates a FeedbackSubmitted event.
func NewFeedbackSubmitted(p *Progression, r *Round) *FeedbackSubmitted {
	decision := r.Decision()
	return &FeedbackSubmitted{
		BaseEvent:       sharedDomain.NewBaseEvent(p.ID(), aggregateType, "interviews.feedback.submitted"),
		ProgressionID:   p.ID(),
		RoundNumber:     r.RoundNumber(),
		Rating:          decision.Rating,
		Verdict:         string(decision.Verdict),
		Status:          string(p.Status()),
		CompletedRounds: p.CompletedRounds(),
	}
}

// ProgressionAdvanced is emitted when a passed round opens the next one.
type ProgressionAdvanced struct {
	sharedDomain.BaseEvent
	ProgressionID  uuid.UUID `json:"progression_id"`
	NextRoundIndex int       `json:"next_round_index"`
}

// NewProgressionAdvanced creates a ProgressionAdvanced event.
func NewProgressionAdvanced(p *Progression) *ProgressionAdvanced {
	return &ProgressionAdvanced{
		BaseEvent:      sharedDomain.NewBaseEvent(p.ID(), aggregateType, "interviews.progression.advanced"),
		ProgressionID:  p.ID(),
		NextRoundIndex: p.NextRoundIndex(),
	}
}

// ProgressionClosed is emitted when the progression reaches a terminal
// status.
type ProgressionClosed struct {
	sharedDomain.BaseEvent
	ProgressionID  uuid.UUID `json:"progression_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	JobRole        string    `json:"job_role"`
	Status         string    `json:"status"`
}

// NewProgressionClosed creates a ProgressionClosed event.
func NewProgressionClosed(p *Progression) *ProgressionClosed {
	return &ProgressionClosed{
		BaseEvent:      sharedDomain.NewBaseEvent(p.ID(), aggregateType, "interviews.progression.closed"),
		ProgressionID:  p.ID(),
		CandidateName:  p.CandidateName(),
		CandidateEmail: p.CandidateEmail(),
		JobRole:        p.JobRole(),
		Status:         string(p.Status()),
	}
}
