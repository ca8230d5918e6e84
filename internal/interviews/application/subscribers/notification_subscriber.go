package subscribers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	interviewsApp "github.com/hiresync/hiresync/internal/interviews/application"
	"github.com/hiresync/hiresync/internal/shared/infrastructure/eventbus"
)

// NotificationSubscriber listens for booking events and dispatches
// notifications to both parties. Delivery failures are logged and never
// fail event handling; a missed email must not poison the outbox.
type NotificationSubscriber struct {
	notifier interviewsApp.NotificationCollaborator
	logger   *slog.Logger
	timeout  time.Duration
}

// NewNotificationSubscriber creates a new notification subscriber.
func NewNotificationSubscriber(notifier interviewsApp.NotificationCollaborator, logger *slog.Logger) *NotificationSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationSubscriber{
		notifier: notifier,
		logger:   logger,
		timeout:  10 * time.Second,
	}
}

// EventTypes returns the event types this subscriber handles.
func (s *NotificationSubscriber) EventTypes() []string {
	return []string{
		"interviews.round.booked",
		"interviews.progression.closed",
	}
}

// Handle processes an event.
func (s *NotificationSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case "interviews.round.booked":
		s.handleRoundBooked(ctx, event)
	case "interviews.progression.closed":
		s.handleProgressionClosed(ctx, event)
	}
	return nil
}

type roundBookedPayload struct {
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
	Rescheduled      bool      `json:"rescheduled"`
	RescheduleReason string    `json:"reschedule_reason"`
}

func (s *NotificationSubscriber) handleRoundBooked(ctx context.Context, event *eventbus.ConsumedEvent) {
	var payload roundBookedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.logger.Error("failed to decode round booked event", "error", err)
		return
	}

	for _, recipient := range []string{payload.InterviewerEmail, payload.CandidateEmail} {
		if recipient == "" {
			continue
		}
		s.send(ctx, interviewsApp.InterviewNotification{
			Recipient:       recipient,
			InterviewerName: payload.InterviewerName,
			CandidateName:   payload.CandidateName,
			JobTitle:        payload.JobRole,
			StartTime:       payload.StartTime,
			EndTime:         payload.EndTime,
			Timezone:        payload.Timezone,
			MeetingLink:     payload.MeetingLink,
			RoundNumber:     payload.RoundNumber,
			RoundType:       payload.RoundType,
			Rescheduled:     payload.Rescheduled,
			Reason:          payload.RescheduleReason,
		})
	}
}

type progressionClosedPayload struct {
	CandidateName  string `json:"candidate_name"`
	CandidateEmail string `json:"candidate_email"`
	JobRole        string `json:"job_role"`
	Status         string `json:"status"`
}

func (s *NotificationSubscriber) handleProgressionClosed(ctx context.Context, event *eventbus.ConsumedEvent) {
	var payload progressionClosedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		s.logger.Error("failed to decode progression closed event", "error", err)
		return
	}
	if payload.CandidateEmail == "" {
		return
	}
	s.send(ctx, interviewsApp.InterviewNotification{
		Recipient:     payload.CandidateEmail,
		CandidateName: payload.CandidateName,
		JobTitle:      payload.JobRole,
		Reason:        payload.Status,
	})
}

func (s *NotificationSubscriber) send(ctx context.Context, notification interviewsApp.InterviewNotification) {
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.notifier.SendInterviewNotification(sendCtx, notification); err != nil {
		s.logger.Warn("notification dispatch failed",
			"recipient", notification.Recipient,
			"round", notification.RoundNumber,
			"error", err,
		)
	}
}
