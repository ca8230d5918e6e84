package application

import (
	"context"
	"time"
)

// InterviewNotification carries everything a notification template needs.
type InterviewNotification struct {
	Recipient       string
	InterviewerName string
	CandidateName   string
	JobTitle        string
	StartTime       time.Time
	EndTime         time.Time
	Timezone        string
	MeetingLink     string
	RoundNumber     int
	RoundType       string
	Rescheduled     bool
	Reason          string
}

// NotificationCollaborator delivers interview notifications. Failures
// are logged by callers, never propagated into scheduling outcomes.
type NotificationCollaborator interface {
	SendInterviewNotification(ctx context.Context, notification InterviewNotification) error
}
