package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/availability/domain"
)

// Calendar is an in-memory calendar collaborator for local development
// and tests. Busy intervals are seeded per email; created events also
// mark their attendees busy.
type Calendar struct {
	mu     sync.RWMutex
	busy   map[string][]domain.Interval
	events map[string]StoredEvent
}

// StoredEvent captures an event held by the in-memory calendar.
type StoredEvent struct {
	ID        string
	Summary   string
	Interval  domain.Interval
	Attendees []string
}

// NewCalendar creates an empty in-memory calendar.
func NewCalendar() *Calendar {
	return &Calendar{
		busy:   make(map[string][]domain.Interval),
		events: make(map[string]StoredEvent),
	}
}

// SeedBusy marks the interval busy for the given email.
func (c *Calendar) SeedBusy(email string, interval domain.Interval) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy[email] = append(c.busy[email], interval)
}

// GetBusyIntervals returns the seeded and event-derived busy intervals
// overlapping the window.
func (c *Calendar) GetBusyIntervals(_ context.Context, email string, window domain.Interval) ([]domain.Interval, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []domain.Interval
	for _, interval := range c.busy[email] {
		if interval.Overlaps(window) {
			out = append(out, interval)
		}
	}
	return out, nil
}

// CreateEvent stores the event and marks every attendee busy for it.
func (c *Calendar) CreateEvent(_ context.Context, req application.CreateEventRequest) (*application.CreatedEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New().String()
	interval := domain.Interval{Start: req.Start, End: req.End}
	c.events[id] = StoredEvent{
		ID:        id,
		Summary:   req.Summary,
		Interval:  interval,
		Attendees: req.Attendees,
	}
	for _, email := range req.Attendees {
		c.busy[email] = append(c.busy[email], interval)
	}

	return &application.CreatedEvent{
		EventID:     id,
		MeetingLink: application.GenerateMeetingLink(),
		HTMLLink:    "memory://events/" + id,
	}, nil
}

// DeleteEvent removes the event and its attendees' busy intervals.
func (c *Calendar) DeleteEvent(_ context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	event, ok := c.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	delete(c.events, eventID)
	for _, email := range event.Attendees {
		intervals := c.busy[email]
		for i, interval := range intervals {
			if interval == event.Interval {
				c.busy[email] = append(intervals[:i], intervals[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Events returns a snapshot of stored events, for assertions in tests.
func (c *Calendar) Events() []StoredEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]StoredEvent, 0, len(c.events))
	for _, event := range c.events {
		out = append(out, event)
	}
	return out
}
