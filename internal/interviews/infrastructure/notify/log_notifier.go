package notify

import (
	"context"
	"log/slog"

	"github.com/hiresync/hiresync/internal/interviews/application"
)

// LogNotifier writes notifications to the structured log instead of
// sending them. Used in local development and wherever no mail transport
// is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// SendInterviewNotification logs the notification.
func (n *LogNotifier) SendInterviewNotification(_ context.Context, notification application.InterviewNotification) error {
	n.logger.Info("interview notification",
		"recipient", notification.Recipient,
		"candidate", notification.CandidateName,
		"interviewer", notification.InterviewerName,
		"job_title", notification.JobTitle,
		"round", notification.RoundNumber,
		"round_type", notification.RoundType,
		"start_time", notification.StartTime,
		"meeting_link", notification.MeetingLink,
		"rescheduled", notification.Rescheduled,
	)
	return nil
}
