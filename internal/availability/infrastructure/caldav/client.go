package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/availability/domain"
)

// Config holds CalDAV server connection settings.
type Config struct {
	// BaseURL is the CalDAV server URL, e.g. "https://cal.example.com/dav".
	BaseURL string
	// Username and Password authenticate the scheduling service account.
	Username string
	Password string
	// CalendarPathTemplate maps a party email to its calendar collection,
	// e.g. "/calendars/%s/default/". When empty the account's own calendar
	// is discovered and used for every party.
	CalendarPathTemplate string
	// EventCalendarPath is the collection interview events are written to.
	// When empty the discovered calendar of the service account is used.
	EventCalendarPath string
}

// Collaborator talks to a CalDAV server. Busy intervals come from a
// calendar-query over VEVENTs in the window; interview events are written
// as calendar objects on the scheduling account's calendar.
type Collaborator struct {
	client       *caldav.Client
	config       Config
	logger       *slog.Logger
	discovered   string
	discoveredAt time.Time
}

// NewCollaborator creates a CalDAV-backed calendar collaborator.
func NewCollaborator(config Config, logger *slog.Logger) (*Collaborator, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("caldav: base URL is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	var authClient webdav.HTTPClient = httpClient
	if config.Username != "" {
		authClient = webdav.HTTPClientWithBasicAuth(httpClient, config.Username, config.Password)
	}

	client, err := caldav.NewClient(authClient, config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caldav: create client: %w", err)
	}

	return &Collaborator{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// GetBusyIntervals queries the party's calendar for events overlapping the
// window and returns them as half-open intervals.
func (c *Collaborator) GetBusyIntervals(ctx context.Context, email string, window domain.Interval) ([]domain.Interval, error) {
	path, err := c.calendarPathFor(ctx, email)
	if err != nil {
		return nil, err
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompEvent,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: window.Start,
				End:   window.End,
			}},
		},
	}

	objects, err := c.client.QueryCalendar(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("caldav: query %s: %w", path, err)
	}

	var busy []domain.Interval
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, child := range obj.Data.Children {
			if child.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: child}
			start, err := event.DateTimeStart(time.UTC)
			if err != nil {
				c.logger.Warn("skipping event without start", "path", obj.Path, "error", err)
				continue
			}
			end, err := event.DateTimeEnd(time.UTC)
			if err != nil || !end.After(start) {
				continue
			}
			interval := domain.Interval{Start: start, End: end}
			if interval.Overlaps(window) {
				busy = append(busy, interval)
			}
		}
	}
	return busy, nil
}

// CreateEvent writes the interview as a VEVENT on the scheduling calendar.
// CalDAV has no conference bridge, so the meeting link is minted locally
// and stored in LOCATION.
func (c *Collaborator) CreateEvent(ctx context.Context, req application.CreateEventRequest) (*application.CreatedEvent, error) {
	path, err := c.eventCalendarPath(ctx)
	if err != nil {
		return nil, err
	}

	eventID := uuid.New().String()
	meetingLink := application.GenerateMeetingLink()

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetText(ical.PropSummary, req.Summary)
	if req.Description != "" {
		event.Props.SetText(ical.PropDescription, req.Description)
	}
	event.Props.SetText(ical.PropLocation, meetingLink)
	event.Props.SetDateTime(ical.PropDateTimeStart, req.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, req.End.UTC())
	for _, attendee := range req.Attendees {
		if attendee == "" {
			continue
		}
		prop := ical.NewProp(ical.PropAttendee)
		prop.Value = "mailto:" + attendee
		event.Props.Add(prop)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, "-//HireSync//Scheduling Engine//EN")
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, event.Component)

	objectPath := c.objectPath(path, eventID)
	if _, err := c.client.PutCalendarObject(ctx, objectPath, cal); err != nil {
		return nil, fmt.Errorf("caldav: put %s: %w", objectPath, err)
	}

	return &application.CreatedEvent{
		EventID:     eventID,
		MeetingLink: meetingLink,
		HTMLLink:    c.config.BaseURL + objectPath,
	}, nil
}

// DeleteEvent removes the calendar object for the given event ID.
func (c *Collaborator) DeleteEvent(ctx context.Context, eventID string) error {
	path, err := c.eventCalendarPath(ctx)
	if err != nil {
		return err
	}
	objectPath := c.objectPath(path, eventID)
	if err := c.client.RemoveAll(ctx, objectPath); err != nil {
		return fmt.Errorf("caldav: remove %s: %w", objectPath, err)
	}
	return nil
}

func (c *Collaborator) calendarPathFor(ctx context.Context, email string) (string, error) {
	if c.config.CalendarPathTemplate != "" {
		return fmt.Sprintf(c.config.CalendarPathTemplate, email), nil
	}
	return c.discoverCalendarPath(ctx)
}

func (c *Collaborator) eventCalendarPath(ctx context.Context) (string, error) {
	if c.config.EventCalendarPath != "" {
		return c.config.EventCalendarPath, nil
	}
	return c.discoverCalendarPath(ctx)
}

// discoverCalendarPath walks principal -> home set -> first calendar that
// supports VEVENT. The result is cached for an hour.
func (c *Collaborator) discoverCalendarPath(ctx context.Context) (string, error) {
	if c.discovered != "" && time.Since(c.discoveredAt) < time.Hour {
		return c.discovered, nil
	}

	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("caldav: find principal: %w", err)
	}
	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("caldav: find home set: %w", err)
	}
	calendars, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("caldav: find calendars: %w", err)
	}

	for _, cal := range calendars {
		if len(cal.SupportedComponentSet) == 0 {
			c.discovered = cal.Path
			break
		}
		for _, comp := range cal.SupportedComponentSet {
			if comp == ical.CompEvent {
				c.discovered = cal.Path
				break
			}
		}
		if c.discovered != "" {
			break
		}
	}
	if c.discovered == "" {
		return "", fmt.Errorf("caldav: no calendar supporting events found")
	}
	c.discoveredAt = time.Now()
	return c.discovered, nil
}

func (c *Collaborator) objectPath(calendarPath, eventID string) string {
	if !strings.HasSuffix(calendarPath, "/") {
		calendarPath += "/"
	}
	return calendarPath + eventID + ".ics"
}
