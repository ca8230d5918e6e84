package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/hiresync/hiresync/internal/availability/application"
	"github.com/hiresync/hiresync/internal/availability/domain"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Collaborator talks to a hosted calendar provider's REST API using
// OAuth2 bearer tokens. Busy intervals come from the freeBusy endpoint;
// events are created with a conference bridge request so the provider
// mints the meeting link.
type Collaborator struct {
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	baseURL     string
	calendarID  string
	timezone    string
}

// NewCollaborator creates a hosted calendar collaborator.
func NewCollaborator(tokenSource oauth2.TokenSource, logger *slog.Logger) *Collaborator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collaborator{
		tokenSource: tokenSource,
		logger:      logger,
		baseURL:     defaultBaseURL,
		calendarID:  "primary",
		timezone:    "UTC",
	}
}

// WithBaseURL overrides the provider base URL, mainly for tests.
func (c *Collaborator) WithBaseURL(baseURL string) *Collaborator {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// WithCalendarID sets the calendar events are written to.
func (c *Collaborator) WithCalendarID(calendarID string) *Collaborator {
	if calendarID != "" {
		c.calendarID = calendarID
	}
	return c
}

func (c *Collaborator) httpClient() (*http.Client, error) {
	if c.tokenSource == nil {
		return nil, fmt.Errorf("hosted calendar: token source not configured")
	}
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &oauthTransport{
			base:   http.DefaultTransport,
			source: c.tokenSource,
		},
	}, nil
}

// GetBusyIntervals asks the provider's freeBusy endpoint for the party's
// busy periods inside the window.
func (c *Collaborator) GetBusyIntervals(ctx context.Context, email string, window domain.Interval) ([]domain.Interval, error) {
	client, err := c.httpClient()
	if err != nil {
		return nil, err
	}

	reqBody := struct {
		TimeMin  string `json:"timeMin"`
		TimeMax  string `json:"timeMax"`
		TimeZone string `json:"timeZone"`
		Items    []struct {
			ID string `json:"id"`
		} `json:"items"`
	}{
		TimeMin:  window.Start.UTC().Format(time.RFC3339),
		TimeMax:  window.End.UTC().Format(time.RFC3339),
		TimeZone: c.timezone,
	}
	reqBody.Items = append(reqBody.Items, struct {
		ID string `json:"id"`
	}{ID: email})

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/freeBusy", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var payload struct {
		Calendars map[string]struct {
			Busy []struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"busy"`
			Errors []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"calendars"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	entry, ok := payload.Calendars[email]
	if !ok {
		return nil, nil
	}
	if len(entry.Errors) > 0 {
		return nil, fmt.Errorf("hosted calendar: freeBusy for %s: %s", email, entry.Errors[0].Reason)
	}

	busy := make([]domain.Interval, 0, len(entry.Busy))
	for _, period := range entry.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			continue
		}
		busy = append(busy, domain.Interval{Start: start, End: end})
	}
	return busy, nil
}

type hostedEvent struct {
	ID          string `json:"id,omitempty"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Attendees   []struct {
		Email string `json:"email"`
	} `json:"attendees,omitempty"`
	Start struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
	ConferenceData *struct {
		CreateRequest struct {
			RequestID string `json:"requestId"`
		} `json:"createRequest"`
		EntryPoints []struct {
			EntryPointType string `json:"entryPointType"`
			URI            string `json:"uri"`
		} `json:"entryPoints,omitempty"`
	} `json:"conferenceData,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	HangoutLink string `json:"hangoutLink,omitempty"`
}

// CreateEvent inserts the interview event and returns the provider's
// event ID plus the conference link it minted. A missing link falls back
// to a locally generated one.
func (c *Collaborator) CreateEvent(ctx context.Context, req application.CreateEventRequest) (*application.CreatedEvent, error) {
	client, err := c.httpClient()
	if err != nil {
		return nil, err
	}

	event := hostedEvent{Summary: req.Summary, Description: req.Description}
	event.Start.DateTime = req.Start.UTC().Format(time.RFC3339)
	event.End.DateTime = req.End.UTC().Format(time.RFC3339)
	for _, email := range req.Attendees {
		if email == "" {
			continue
		}
		event.Attendees = append(event.Attendees, struct {
			Email string `json:"email"`
		}{Email: email})
	}
	event.ConferenceData = &struct {
		CreateRequest struct {
			RequestID string `json:"requestId"`
		} `json:"createRequest"`
		EntryPoints []struct {
			EntryPointType string `json:"entryPointType"`
			URI            string `json:"uri"`
		} `json:"entryPoints,omitempty"`
	}{}
	event.ConferenceData.CreateRequest.RequestID = fmt.Sprintf("hiresync-%d", time.Now().UnixNano())

	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	insertURL := fmt.Sprintf("%s/calendars/%s/events?conferenceDataVersion=1", c.baseURL, url.PathEscape(c.calendarID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, insertURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var created hostedEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}

	link := created.HangoutLink
	if link == "" && created.ConferenceData != nil {
		for _, entry := range created.ConferenceData.EntryPoints {
			if entry.EntryPointType == "video" {
				link = entry.URI
				break
			}
		}
	}
	if link == "" {
		c.logger.Warn("provider returned no conference link, generating one", "event_id", created.ID)
		link = application.GenerateMeetingLink()
	}

	return &application.CreatedEvent{
		EventID:     created.ID,
		MeetingLink: link,
		HTMLLink:    created.HTMLLink,
	}, nil
}

// DeleteEvent removes the event from the provider.
func (c *Collaborator) DeleteEvent(ctx context.Context, eventID string) error {
	client, err := c.httpClient()
	if err != nil {
		return err
	}

	deleteURL := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(resp)
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("hosted calendar: status=%d body=%s", resp.StatusCode, string(body))
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(req)
}
