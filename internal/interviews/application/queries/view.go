package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/interviews/domain"
)

// BookingView is the read model of a round's booking.
type BookingView struct {
	EventID     string    `json:"event_id,omitempty"`
	MeetingLink string    `json:"meeting_link"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Timezone    string    `json:"timezone"`
	Degraded    bool      `json:"degraded"`
}

// DecisionView is the read model of a round's feedback.
type DecisionView struct {
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
	Verdict  string `json:"verdict"`
}

// RoundView is the read model of one round.
type RoundView struct {
	RoundNumber      int           `json:"round_number"`
	RoundType        string        `json:"round_type"`
	InterviewerName  string        `json:"interviewer_name"`
	InterviewerEmail string        `json:"interviewer_email"`
	Department       string        `json:"department"`
	Booking          *BookingView  `json:"booking,omitempty"`
	Decision         *DecisionView `json:"decision,omitempty"`
	Rescheduled      bool          `json:"rescheduled"`
	RescheduleReason string        `json:"reschedule_reason,omitempty"`
}

// ProgressionView is the read model of a progression.
type ProgressionView struct {
	ID                    uuid.UUID   `json:"id"`
	JobID                 uuid.UUID   `json:"job_id"`
	CandidateID           uuid.UUID   `json:"candidate_id"`
	CandidateName         string      `json:"candidate_name"`
	CandidateEmail        string      `json:"candidate_email"`
	JobRole               string      `json:"job_role"`
	RoundsTotal           int         `json:"rounds_total"`
	CompletedRounds       int         `json:"completed_rounds"`
	NextRoundIndex        int         `json:"next_round_index"`
	Status                string      `json:"status"`
	CurrentRoundScheduled bool        `json:"current_round_scheduled"`
	Rounds                []RoundView `json:"rounds"`
	CreatedAt             time.Time   `json:"created_at"`
	LastUpdated           time.Time   `json:"last_updated"`
}

func toView(p *domain.Progression) ProgressionView {
	view := ProgressionView{
		ID:                    p.ID(),
		JobID:                 p.JobID(),
		CandidateID:           p.CandidateID(),
		CandidateName:         p.CandidateName(),
		CandidateEmail:        p.CandidateEmail(),
		JobRole:               p.JobRole(),
		RoundsTotal:           p.RoundsTotal(),
		CompletedRounds:       p.CompletedRounds(),
		NextRoundIndex:        p.NextRoundIndex(),
		Status:                string(p.Status()),
		CurrentRoundScheduled: p.CurrentRoundScheduled(),
		CreatedAt:             p.CreatedAt(),
		LastUpdated:           p.UpdatedAt(),
	}
	for _, round := range p.Rounds() {
		rv := RoundView{
			RoundNumber:      round.RoundNumber(),
			RoundType:        string(round.RoundType()),
			InterviewerName:  round.InterviewerName(),
			InterviewerEmail: round.InterviewerEmail(),
			Department:       round.Department(),
			Rescheduled:      round.Rescheduled(),
			RescheduleReason: round.RescheduleReason(),
		}
		if booking := round.Booking(); booking != nil {
			rv.Booking = &BookingView{
				EventID:     booking.EventID,
				MeetingLink: booking.MeetingLink,
				StartTime:   booking.StartTime,
				EndTime:     booking.EndTime,
				Timezone:    booking.Timezone,
				Degraded:    booking.Degraded,
			}
		}
		if decision := round.Decision(); decision != nil {
			rv.Decision = &DecisionView{
				Feedback: decision.Feedback,
				Rating:   decision.Rating,
				Verdict:  string(decision.Verdict),
			}
		}
		view.Rounds = append(view.Rounds, rv)
	}
	return view
}
