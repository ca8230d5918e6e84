package application

import (
	"context"
	"time"

	"github.com/hiresync/hiresync/internal/availability/domain"
)

// CalendarCollaborator is the port to the external calendar system. The
// engine only needs busy intervals and event create/delete; everything
// else about the provider is an infrastructure concern.
type CalendarCollaborator interface {
	GetBusyIntervals(ctx context.Context, email string, window domain.Interval) ([]domain.Interval, error)
	CreateEvent(ctx context.Context, req CreateEventRequest) (*CreatedEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// CreateEventRequest describes a calendar event to create.
type CreateEventRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// CreatedEvent is the provider's handle for a created event.
type CreatedEvent struct {
	EventID     string
	MeetingLink string
	HTMLLink    string
}
