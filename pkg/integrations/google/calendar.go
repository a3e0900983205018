package google

import (
	"context"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
)

// CalendarClient wraps the Google Calendar API behind the workspace's
// OAuth2 credentials.
type CalendarClient struct {
	svc *calendar.Service
}

// NewCalendarClient builds an authenticated Calendar client.
func NewCalendarClient(ctx context.Context, auth *Authenticator) (*CalendarClient, error) {
	httpClient, err := auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeInternal, err, "creating calendar service")
	}
	return &CalendarClient{svc: svc}, nil
}

// ListEvents returns upcoming events of a calendar, soonest first.
// calendarID "primary" targets the authenticated user's main calendar.
func (c *CalendarClient) ListEvents(ctx context.Context, calendarID string, days, limit int) ([]*calendar.Event, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 50
	}

	now := time.Now()
	events, err := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(limit)).
		Do()
	if err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeAPI, err, "listing calendar events")
	}
	return events.Items, nil
}

// CreateEvent inserts an event into a calendar.
func (c *CalendarClient) CreateEvent(ctx context.Context, calendarID, summary string, start, end time.Time) (*calendar.Event, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	event := &calendar.Event{
		Summary: summary,
		Start:   &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, nxerrors.Wrap(nxerrors.ErrCodeAPI, err, "creating calendar event")
	}
	return created, nil
}
